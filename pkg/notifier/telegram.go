package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"reservewatch/pkg/config"
	"reservewatch/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ParseModeHTML lets messages use <b>, <a href> and friends.
const ParseModeHTML = "HTML"

// TelegramNotifier delivers messages through the Bot API sendMessage method.
type TelegramNotifier struct {
	config     *config.TelegramConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// TelegramMessage represents a message to be sent via Telegram
type TelegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// TelegramResponse represents Telegram API response
type TelegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(cfg *config.TelegramConfig) *TelegramNotifier {
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	return &TelegramNotifier{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout(),
		},
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

// Send posts text to chatID. It reports whether Telegram answered 200; every
// failure is logged here and never propagated, and nothing is retried.
func (t *TelegramNotifier) Send(ctx context.Context, text, chatID string) bool {
	log := logger.FromContext(ctx).With(zap.String("chat_id", chatID))

	if err := t.limiter.Wait(ctx); err != nil {
		log.Warn("Telegram message dropped while waiting for rate limit", zap.Error(err))
		return false
	}

	status, err := t.sendTelegramMessage(ctx, &TelegramMessage{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             ParseModeHTML,
		DisableWebPagePreview: true,
	})
	if err != nil {
		log.Error("Failed to send Telegram message", zap.Int("status", status), zap.Error(err))
		return false
	}

	log.Info("Telegram message sent")
	return true
}

func (t *TelegramNotifier) endpoint() string {
	base := strings.TrimRight(t.config.APIBase, "/")
	if base == "" {
		base = config.DefaultTelegramAPIBase
	}
	return fmt.Sprintf("%s/bot%s/sendMessage", base, t.config.BotToken)
}

// sendTelegramMessage returns the HTTP status (0 when no response arrived).
func (t *TelegramNotifier) sendTelegramMessage(ctx context.Context, message *TelegramMessage) (int, error) {
	jsonData, err := json.Marshal(message)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint(), bytes.NewReader(jsonData))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.FromContext(ctx).Debug("Sending Telegram message",
		zap.String("chat_id", message.ChatID),
		zap.String("text", message.Text[:min(100, len(message.Text))]))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// the token is part of the URL; keep it out of logs
		return 0, fmt.Errorf("failed to send request: %s", redact(err.Error(), t.config.BotToken))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	var telegramResp TelegramResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&telegramResp); err == nil && telegramResp.Description != "" {
		return resp.StatusCode, fmt.Errorf("telegram API error: %s (code: %d)", telegramResp.Description, telegramResp.ErrorCode)
	}
	return resp.StatusCode, fmt.Errorf("telegram API returned HTTP %d", resp.StatusCode)
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "<redacted>")
}
