package driven

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alorle/iptv-checker/internal/port/driven"
	"github.com/alorle/iptv-checker/internal/report"
)

const (
	defaultTelegramAPI = "https://api.telegram.org"

	// TelegramMessageLimit is the maximum text length of one Bot API message
	TelegramMessageLimit = 4096

	telegramTimeout = 10 * time.Second
)

var ErrNotifierMisconfigured = errors.New("telegram notifier misconfigured")

// TelegramNotifier implements the Notifier port via the Telegram Bot API.
// Long reports are split into several messages sent one per second.
type TelegramNotifier struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewTelegramNotifier registers bot token and chat identifier.
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		baseURL:  defaultTelegramAPI,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: telegramTimeout},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (n *TelegramNotifier) Name() string { return "telegram" }

// Notify posts text as Markdown. Every chunk is attempted even if an earlier
// one failed; all failures are returned joined.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" {
		return ErrNotifierMisconfigured
	}

	var errs []error
	chunks := report.Split(text, TelegramMessageLimit)
	for i, chunk := range chunks {
		if err := n.limiter.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err))
			break
		}
		if err := n.send(ctx, chunk); err != nil {
			errs = append(errs, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err))
		}
	}
	return errors.Join(errs...)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		// The request URL carries the bot token
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}
	return nil
}

var _ driven.Notifier = (*TelegramNotifier)(nil)
