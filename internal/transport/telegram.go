package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TelegramDriver pushes messages through the Telegram bot HTTP API.
// Grounded on spec.md §4.1/§4.6/§6's literal wire contract: the exact
// request/response shape is dictated by the spec down to field names and
// the ok/description envelope, so this talks to the API directly over
// net/http rather than through a bot-framework library — DESIGN.md
// justifies this as the one place a stdlib-only implementation beats a
// third-party client, since a wrapper library would hide the byte-level
// contract the tests assert against.
type TelegramDriver struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewTelegramDriver(baseURL, token string) *TelegramDriver {
	return &TelegramDriver{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Push formats body as "[title]\n\n<body>" (title omitted when empty) and
// POSTs it to <base>/bot<token>/sendMessage. A failed HTTP call, an
// undecodable response body, or a body with ok=false is reported as a
// delivery failure, with Description becoming the retry reason (spec.md
// §4.1, §7). The HTTP status code itself is not inspected.
func (d *TelegramDriver) Push(ctx context.Context, chatID, title, body string) error {
	text := body
	if title != "" {
		text = fmt.Sprintf("[%s]\n\n%s", title, body)
	}

	reqBody, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal sendMessage request: %w", err)
	}

	url := fmt.Sprintf("%sbot%s/sendMessage", d.baseURL, d.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decode sendMessage response: %w", err)
	}

	if !tr.OK {
		reason := tr.Description
		if reason == "" {
			reason = "telegram reported ok=false"
		}
		return fmt.Errorf("%s", reason)
	}
	return nil
}

// GetUpdatesRequest is the long-poll request body the bot poller (C7)
// issues against <base>/bot<token>/getUpdates.
type GetUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// Update is the subset of Telegram's Update shape the bot poller needs.
type Update struct {
	UpdateID int64  `json:"update_id"`
	Message  *TgMsg `json:"message,omitempty"`
}

type TgMsg struct {
	Text string `json:"text"`
	Chat TgChat `json:"chat"`
}

type TgChat struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type getUpdatesResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description,omitempty"`
	Result      []Update `json:"result"`
}

// GetUpdates performs one long-poll call and returns the batch of updates.
func (d *TelegramDriver) GetUpdates(ctx context.Context, req GetUpdatesRequest) ([]Update, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal getUpdates request: %w", err)
	}

	url := fmt.Sprintf("%sbot%s/getUpdates", d.baseURL, d.token)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build getUpdates request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	// The long-poll timeout is server-side (the `timeout` field above); give
	// the HTTP client enough slack on top of it to avoid racing the server.
	client := &http.Client{Timeout: time.Duration(req.Timeout+10) * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	var gr getUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decode getUpdates response: %w", err)
	}
	if !gr.OK {
		reason := gr.Description
		if reason == "" {
			reason = "telegram reported ok=false"
		}
		return nil, fmt.Errorf("%s", reason)
	}
	return gr.Result, nil
}
