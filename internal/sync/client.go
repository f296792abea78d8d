package sync

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"example.com/learningmate-ops/backend/internal/notifications"
)

// Client — HTTP-клиент API хранилища коллекций.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создает клиент API по базовому адресу сервиса.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type collectionResponse struct {
	Items json.RawMessage `json:"items"`
}

type replaceCollectionRequest struct {
	WriteID string          `json:"write_id,omitempty"`
	Items   json.RawMessage `json:"items"`
}

type targetResponse struct {
	MonthlyTarget int64 `json:"monthly_target"`
}

type setTargetRequest struct {
	WriteID       string `json:"write_id,omitempty"`
	MonthlyTarget int64  `json:"monthly_target"`
}

// FetchCollection возвращает содержимое коллекции как сырой JSON-массив.
func (c *Client) FetchCollection(ctx context.Context, name string) (json.RawMessage, error) {
	var response collectionResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/collections/"+name, nil, &response); err != nil {
		return nil, err
	}

	if response.Items == nil {
		return json.RawMessage("[]"), nil
	}

	return response.Items, nil
}

// FetchCollectionInto декодирует содержимое коллекции в типизированный срез.
func (c *Client) FetchCollectionInto(ctx context.Context, name string, dest interface{}) (json.RawMessage, error) {
	items, err := c.FetchCollection(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, dest); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", name, err)
	}

	return items, nil
}

// ReplaceCollection заменяет содержимое коллекции на сервере целиком.
func (c *Client) ReplaceCollection(ctx context.Context, name, writeID string, items json.RawMessage) error {
	body := replaceCollectionRequest{WriteID: writeID, Items: items}
	return c.do(ctx, http.MethodPut, "/api/v1/collections/"+name, body, nil)
}

// FetchMonthlyTarget возвращает месячную цель; второй результат false,
// если цель на сервере еще не задана.
func (c *Client) FetchMonthlyTarget(ctx context.Context) (int64, bool, error) {
	var response targetResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/settings/monthly-target", nil, &response)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}

	return response.MonthlyTarget, true, nil
}

// SetMonthlyTarget сохраняет месячную цель на сервере.
func (c *Client) SetMonthlyTarget(ctx context.Context, writeID string, target int64) error {
	body := setTargetRequest{WriteID: writeID, MonthlyTarget: target}
	return c.do(ctx, http.MethodPut, "/api/v1/settings/monthly-target", body, nil)
}

// StreamEvents открывает SSE-поток и вызывает handler для каждого события.
// Возвращается при отмене контекста или обрыве потока.
func (c *Client) StreamEvents(ctx context.Context, handler func(notifications.Event)) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/events/stream", nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "text/event-stream")

	// The stream is long-lived; a per-request timeout would kill it.
	streamClient := &http.Client{Transport: c.httpClient.Transport}

	response, err := streamClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return &APIError{StatusCode: response.StatusCode, Message: "event stream rejected"}
	}

	scanner := bufio.NewScanner(response.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event notifications.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			continue
		}

		handler(event)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return scanner.Err()
}

// APIError — ошибка API с HTTP-статусом.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(string(raw))
		if len(message) > 200 {
			message = message[:200]
		}
		return &APIError{StatusCode: response.StatusCode, Message: message}
	}

	if dest == nil {
		return nil
	}

	return json.Unmarshal(raw, dest)
}
