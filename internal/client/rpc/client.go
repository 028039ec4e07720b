// Package rpc — клиент процедур витрины поверх HTTP
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/asquebay/simple-storefront/internal/lib/apperr"
)

const prefix = "/api/rpc/"

// ErrTransport — запрос не дошёл до сервера или ответ не прочитан
var ErrTransport = errors.New("rpc transport failure")

// Error — отказ, который вернул сервер
type Error struct {
	Procedure string
	Status    int
	Code      apperr.Code
	Message   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc %s: %s (%d): %s", e.Procedure, e.Code, e.Status, e.Message)
}

// Unwrap даёт apperr.CodeOf и errors.Is работать с ошибками сервера
func (e *Error) Unwrap() error {
	return apperr.E(e.Code, e.Message)
}

// Client вызывает процедуры RPC
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент, например в тестах
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken добавляет сессионный токен к каждому запросу
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query вызывает процедуру чтения, вход передаётся в параметре input
func (c *Client) Query(ctx context.Context, procedure string, input, out any) error {
	const op = "client.rpc.Query"

	u := c.baseURL + prefix + procedure
	if input != nil {
		raw, err := json.Marshal(input)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal input: %w", op, err)
		}
		u += "?input=" + url.QueryEscape(string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(req, procedure, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Mutate вызывает процедуру записи, вход передаётся в теле
func (c *Client) Mutate(ctx context.Context, procedure string, input, out any) error {
	const op = "client.rpc.Mutate"

	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal input: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+prefix+procedure, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.do(req, procedure, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) do(req *http.Request, procedure string, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// отмена вызывающей стороной не считается сбоем сети
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return decodeError(procedure, resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", ErrTransport, err)
	}
	return nil
}

func decodeError(procedure string, status int, body []byte) *Error {
	var payload struct {
		Error struct {
			Code    apperr.Code `json:"code"`
			Message string      `json:"message"`
		} `json:"error"`
	}
	e := &Error{Procedure: procedure, Status: status}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Code != "" {
		e.Code = payload.Error.Code
		e.Message = payload.Error.Message
		return e
	}
	e.Code = apperr.CodeFromStatus(status)
	e.Message = http.StatusText(status)
	return e
}
