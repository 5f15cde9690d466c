// Package push delivers notifications through the Expo push service.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"orderbell/internal/domain/notification"
)

const (
	// DefaultBaseURL is the public Expo push API.
	DefaultBaseURL = "https://exp.host/--/api/v2"

	// ChunkLimit is the maximum number of messages per send request.
	ChunkLimit = 100

	// bodies larger than this are gzip-compressed
	gzipThreshold = 1024

	defaultTimeout = 10 * time.Second
)

var expoTokenPattern = regexp.MustCompile(`^Expo(nent)?PushToken\[.*\]$`)

// IsExpoPushToken reports whether token looks like an Expo push token:
// either ExponentPushToken[...] / ExpoPushToken[...] or a bare device UUID.
func IsExpoPushToken(token string) bool {
	if expoTokenPattern.MatchString(token) {
		return true
	}
	if len(token) != 36 {
		return false
	}
	_, err := uuid.Parse(token)
	return err == nil
}

// ChunkPushNotifications splits messages into batches of at most ChunkLimit.
func ChunkPushNotifications(messages []notification.Message) [][]notification.Message {
	chunks := make([][]notification.Message, 0, (len(messages)+ChunkLimit-1)/ChunkLimit)
	for start := 0; start < len(messages); start += ChunkLimit {
		end := min(start+ChunkLimit, len(messages))
		chunks = append(chunks, messages[start:end])
	}
	return chunks
}

// Config configures the Expo client.
type Config struct {
	BaseURL     string
	AccessToken string // optional, enables enhanced push security
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Client is an Expo push API client. It implements notification.Dispatcher.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

// New creates an Expo client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient:  hc,
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: cfg.AccessToken,
	}
}

// IsValidToken implements notification.Dispatcher.
func (c *Client) IsValidToken(token string) bool {
	return IsExpoPushToken(token)
}

// Chunk implements notification.Dispatcher.
func (c *Client) Chunk(messages []notification.Message) [][]notification.Message {
	return ChunkPushNotifications(messages)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type sendResponse struct {
	Data   []notification.Ticket `json:"data"`
	Errors []apiError            `json:"errors"`
}

// Send posts one batch to /push/send and returns its tickets.
func (c *Client) Send(ctx context.Context, batch []notification.Message) ([]notification.Ticket, error) {
	if len(batch) > ChunkLimit {
		return nil, fmt.Errorf("batch of %d exceeds chunk limit %d", len(batch), ChunkLimit)
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}

	compressed := len(payload) > gzipThreshold
	if compressed {
		if payload, err = gzipBytes(payload); err != nil {
			return nil, fmt.Errorf("compress messages: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/push/send", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Content-Type", "application/json")
	if compressed {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed sendResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && len(parsed.Errors) > 0 {
			return nil, fmt.Errorf("expo push: status %d: %s: %s", resp.StatusCode, parsed.Errors[0].Code, parsed.Errors[0].Message)
		}
		return nil, fmt.Errorf("expo push: status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("expo push: %s: %s", parsed.Errors[0].Code, parsed.Errors[0].Message)
	}
	if len(parsed.Data) != len(batch) {
		return nil, fmt.Errorf("expo push: got %d tickets for %d messages", len(parsed.Data), len(batch))
	}
	return parsed.Data, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	if !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return io.ReadAll(resp.Body)
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ notification.Dispatcher = (*Client)(nil)
