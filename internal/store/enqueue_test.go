package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestEnqueueMessageInsertsOneRowPerTransportInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	enq := NewEnqueuer(&DB{DB: db})

	chatA, chatB := "1001", "1002"
	transports := []*Transport{
		{ID: 1, Type: TransportTelegram, ChatID: &chatA, Connected: true},
		{ID: 2, Type: TransportTelegram, ChatID: &chatB, Connected: true},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO message`)).
		WithArgs(int64(42), "title", "body").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO task`)).
		WithArgs(int64(7), int64(42), int64(1), TransportTelegram, "1001", TaskPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO task`)).
		WithArgs(int64(7), int64(42), int64(2), TransportTelegram, "1002", TaskPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectCommit()

	messageID, taskIDs, err := enq.EnqueueMessage(context.Background(), 42, "title", "body", transports)
	if err != nil {
		t.Fatalf("EnqueueMessage: %v", err)
	}
	if messageID != 7 {
		t.Fatalf("messageID = %d, want 7", messageID)
	}
	if len(taskIDs) != 2 || taskIDs[0] != 100 || taskIDs[1] != 101 {
		t.Fatalf("taskIDs = %v, want [100 101] in order", taskIDs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnqueueMessageSkipsNonDeliverableTransports(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	enq := NewEnqueuer(&DB{DB: db})

	transports := []*Transport{
		{ID: 1, Type: TransportTelegram, ChatID: nil, Connected: false},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO message`)).
		WithArgs(int64(42), "title", "body").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	_, taskIDs, err := enq.EnqueueMessage(context.Background(), 42, "title", "body", transports)
	if err != nil {
		t.Fatalf("EnqueueMessage: %v", err)
	}
	if len(taskIDs) != 0 {
		t.Fatalf("taskIDs = %v, want empty", taskIDs)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnqueueMessageRollsBackOnTaskInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	enq := NewEnqueuer(&DB{DB: db})

	chatA := "1001"
	transports := []*Transport{
		{ID: 1, Type: TransportTelegram, ChatID: &chatA, Connected: true},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO message`)).
		WithArgs(int64(42), "title", "body").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO task`)).
		WithArgs(int64(7), int64(42), int64(1), TransportTelegram, "1001", TaskPending).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	_, _, err = enq.EnqueueMessage(context.Background(), 42, "title", "body", transports)
	if err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
