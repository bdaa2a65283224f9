// Package assistant клиент внешнего ассистента, который разбирает текстовые команды пользователя
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultRPS     = 2

	commandPath = "/webhook/dashboard-command"
	maxBodyLog  = 512
)

var (
	// ErrBusy ассистент еще обрабатывает предыдущую команду (409)
	ErrBusy = errors.New("assistant is busy")
	// ErrUnavailable любой другой неуспешный ответ или сетевая ошибка
	ErrUnavailable = errors.New("assistant temporarily unavailable")
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimit ограничивает исходящие запросы к ассистенту
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			burst := int(requestsPerSecond)
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
		}
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRPS), DefaultRPS),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type commandRequest struct {
	Command string `json:"command"`
}

// SendCommand отправляет команду от имени пользователя с телефоном phone.
// Тело ответа возвращается без разбора
func (c *Client) SendCommand(ctx context.Context, phone, command string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(commandRequest{Command: command})
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}

	reqURL := c.baseURL + commandPath + "?" + url.Values{"telefone": {phone}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Dur("elapsed", elapsed).Msg("assistant request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		c.logger.Info().Dur("elapsed", elapsed).Msg("assistant busy")
		return nil, ErrBusy
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", truncate(respBody, maxBodyLog)).
			Dur("elapsed", elapsed).
			Msg("assistant non-OK response")
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	if len(bytes.TrimSpace(respBody)) == 0 || !json.Valid(respBody) {
		return nil, fmt.Errorf("%w: invalid response body", ErrUnavailable)
	}

	c.logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("assistant call")
	return json.RawMessage(respBody), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
