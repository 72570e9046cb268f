package botpoller

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"simple-push-service/internal/store"
	"simple-push-service/internal/transport"
)

func newTestPoller(t *testing.T, driver *transport.TelegramDriver) (*Poller, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	wrapped := &store.DB{DB: db}
	users := store.NewUserRepo(wrapped)
	transports := store.NewTransportRepo(wrapped)

	return New(driver, users, transports, zap.NewNop()), mock
}

func newStubTelegramServer(t *testing.T) (*transport.TelegramDriver, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	t.Cleanup(srv.Close)
	return transport.NewTelegramDriver(srv.URL+"/", "token"), srv
}

func TestHandleInsertsTransportOnFirstStart(t *testing.T) {
	driver, _ := newStubTelegramServer(t)
	poller, mock := newTestPoller(t, driver)

	openID := uuid.New()
	userRows := sqlmock.NewRows([]string{"id", "open_id", "project_id", "wallet_address", "creation_time"}).
		AddRow(int64(7), openID, "proj-id", "0xabc", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, open_id, project_id, wallet_address, creation_time`)).
		WithArgs(openID).
		WillReturnRows(userRows)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, type, chat_id, username, connected, creation_time
		FROM transport WHERE user_id = $1 AND type = $2`)).
		WithArgs(int64(7), store.TransportTelegram).
		WillReturnError(sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO transport`)).
		WithArgs(int64(7), store.TransportTelegram, sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "creation_time"}).AddRow(int64(1), time.Now()))

	update := transport.Update{
		UpdateID: 1,
		Message: &transport.TgMsg{
			Text: "/start " + openID.String(),
			Chat: transport.TgChat{ID: 42, Username: "bob"},
		},
	}

	poller.handle(context.Background(), update)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHandleUpdatesExistingTransportInPlace(t *testing.T) {
	driver, _ := newStubTelegramServer(t)
	poller, mock := newTestPoller(t, driver)

	openID := uuid.New()
	userRows := sqlmock.NewRows([]string{"id", "open_id", "project_id", "wallet_address", "creation_time"}).
		AddRow(int64(7), openID, "proj-id", "0xabc", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, open_id, project_id, wallet_address, creation_time`)).
		WithArgs(openID).
		WillReturnRows(userRows)

	chatID := "100"
	transportRows := sqlmock.NewRows([]string{"id", "user_id", "type", "chat_id", "username", "connected", "creation_time"}).
		AddRow(int64(3), int64(7), store.TransportTelegram, &chatID, nil, true, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, type, chat_id, username, connected, creation_time
		FROM transport WHERE user_id = $1 AND type = $2`)).
		WithArgs(int64(7), store.TransportTelegram).
		WillReturnRows(transportRows)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE transport`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), int64(7), store.TransportTelegram).
		WillReturnResult(sqlmock.NewResult(0, 1))

	update := transport.Update{
		UpdateID: 2,
		Message: &transport.TgMsg{
			Text: "/start " + openID.String(),
			Chat: transport.TgChat{ID: 42, Username: "bob"},
		},
	}

	poller.handle(context.Background(), update)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHandleIgnoresNonStartMessages(t *testing.T) {
	driver, _ := newStubTelegramServer(t)
	poller, mock := newTestPoller(t, driver)

	update := transport.Update{
		UpdateID: 1,
		Message:  &transport.TgMsg{Text: "hello", Chat: transport.TgChat{ID: 42}},
	}
	poller.handle(context.Background(), update)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
