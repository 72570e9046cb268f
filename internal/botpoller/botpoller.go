// Package botpoller implements the inbound bot poller (C7): a
// long-running task that long-polls the bot provider's getUpdates and
// binds chat identifiers to users via "/start <open_id>" messages.
package botpoller

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"simple-push-service/internal/store"
	"simple-push-service/internal/transport"
)

const startPrefix = "/start "

// Poller drives the long-poll loop. Failures on a single update are
// logged and swallowed; the poller never crashes on bad input (spec.md
// §4.7).
type Poller struct {
	driver     *transport.TelegramDriver
	users      *store.UserRepo
	transports *store.TransportRepo
	logger     *zap.Logger
	offset     int64
	running    atomic.Bool
}

func New(driver *transport.TelegramDriver, users *store.UserRepo, transports *store.TransportRepo, logger *zap.Logger) *Poller {
	p := &Poller{driver: driver, users: users, transports: transports, logger: logger}
	p.running.Store(true)
	return p
}

func (p *Poller) Stop() {
	p.running.Store(false)
}

// Run loops calling getUpdates with limit=100, timeout=5,
// allowed_updates=["message"], tracking offset one past the highest
// update_id seen (spec.md §4.7), until Stop is called.
func (p *Poller) Run(ctx context.Context) {
	for p.running.Load() {
		updates, err := p.driver.GetUpdates(ctx, transport.GetUpdatesRequest{
			Offset:         p.offset,
			Limit:          100,
			Timeout:        5,
			AllowedUpdates: []string{"message"},
		})
		if err != nil {
			p.logger.Warn("getUpdates failed", zap.Error(err))
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= p.offset {
				p.offset = u.UpdateID + 1
			}
			p.handle(ctx, u)
		}
	}
}

func (p *Poller) handle(ctx context.Context, u transport.Update) {
	if u.Message == nil || !strings.HasPrefix(u.Message.Text, startPrefix) {
		return
	}

	openIDStr := strings.TrimSpace(strings.TrimPrefix(u.Message.Text, startPrefix))
	openID, err := uuid.Parse(openIDStr)
	if err != nil {
		p.logger.Warn("bad open_id in /start payload", zap.String("payload", openIDStr), zap.Error(err))
		return
	}

	user, err := p.users.FindByOpenID(ctx, openID)
	if err != nil {
		if err == store.ErrNotFound {
			p.logger.Info("/start for unknown open_id, dropping", zap.String("open_id", openIDStr))
			return
		}
		p.logger.Error("lookup user by open_id failed", zap.Error(err))
		return
	}

	chatID := strconv.FormatInt(u.Message.Chat.ID, 10)
	username := u.Message.Chat.Username

	_, err = p.transports.FindByUserIDAndType(ctx, user.ID, store.TransportTelegram)
	switch {
	case err == nil:
		if err := p.transports.UpdateChatID(ctx, user.ID, store.TransportTelegram, chatID, &username); err != nil {
			p.logger.Error("update transport chat_id failed", zap.Error(err))
			return
		}
	case err == store.ErrNotFound:
		newTransport := &store.Transport{
			UserID:    user.ID,
			Type:      store.TransportTelegram,
			ChatID:    &chatID,
			Username:  &username,
			Connected: true,
		}
		if err := p.transports.Insert(ctx, newTransport); err != nil {
			p.logger.Error("insert transport failed", zap.Error(err))
			return
		}
	default:
		p.logger.Error("lookup transport failed", zap.Error(err))
		return
	}

	if err := p.driver.Push(ctx, chatID, "", "Your chat is now connected."); err != nil {
		p.logger.Warn("confirmation push failed", zap.Error(err))
	}
}
