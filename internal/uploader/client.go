package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipcart/internal/config"
	"clipcart/internal/services"
)

const userAgent = "Clipcart-Go/0.1.0"

// HTTPPublisher talks to the external publishing service over its REST
// surface. The service fronts the actual platform APIs; this client only
// ships the file and metadata and interprets the response.
type HTTPPublisher struct {
	cfg    *config.Config
	client *http.Client
}

// NewHTTPPublisher builds the standard publisher client.
func NewHTTPPublisher(cfg *config.Config) *HTTPPublisher {
	return &HTTPPublisher{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// WithHTTPClient allows injecting a custom HTTP client for tests.
func (p *HTTPPublisher) WithHTTPClient(client *http.Client) {
	if p != nil && client != nil {
		p.client = client
	}
}

type publishResponse struct {
	PostURL string `json:"post_url"`
	Error   string `json:"error"`
}

// Publish uploads the clip as a multipart request and returns the public post
// URL. HTTP failure statuses are translated into classified publish errors so
// the scheduler can pick the right retry policy.
func (p *HTTPPublisher) Publish(ctx context.Context, req PublishRequest) (string, error) {
	base := strings.TrimRight(p.cfg.Publisher.BaseURL, "/")
	if base == "" {
		return "", &PublishError{Kind: KindAuth, Message: "publisher base URL not configured"}
	}

	file, err := os.Open(req.FilePath)
	if err != nil {
		return "", fmt.Errorf("open clip: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"title":       req.Title,
		"description": req.Description,
		"hashtags":    strings.Join(req.Hashtags, " "),
		"platform":    req.Platform,
		"channel":     req.Channel,
		"privacy":     req.Privacy,
	}
	if req.ScheduledAt != nil {
		fields["scheduled_publish_time"] = req.ScheduledAt.UTC().Format(time.RFC3339)
	}
	for key, value := range fields {
		if value == "" {
			continue
		}
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("write field %s: %w", key, err)
		}
	}
	part, err := writer.CreateFormFile("video", filepath.Base(req.FilePath))
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy clip into request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finish multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/videos", &body)
	if err != nil {
		return "", fmt.Errorf("build publish request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	token, err := p.token()
	if err != nil {
		return "", &PublishError{Kind: KindAuth, Message: "read publisher token", Err: err}
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send publish request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode >= 300 {
		return "", classifyStatus(resp.StatusCode, raw)
	}

	var decoded publishResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode publish response: %w", err)
	}
	return decoded.PostURL, nil
}

// token reads the bearer token fresh on every publish so rotation does not
// require a restart.
func (p *HTTPPublisher) token() (string, error) {
	path := strings.TrimSpace(p.cfg.Publisher.TokenPath)
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func classifyStatus(status int, body []byte) error {
	message := strings.TrimSpace(string(body))
	var decoded publishResponse
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error != "" {
		message = decoded.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}
	detail := fmt.Sprintf("publisher returned %d: %s", status, message)

	switch status {
	case http.StatusTooManyRequests:
		return &PublishError{Kind: KindQuota, Message: detail, Err: services.ErrQuotaExceeded}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &PublishError{Kind: KindAuth, Message: detail, Err: services.ErrAuthFailure}
	case http.StatusConflict:
		return &PublishError{Kind: KindDuplicate, Message: detail, Err: services.ErrDuplicatePublish}
	default:
		return &PublishError{Kind: KindUnknown, Message: detail, Err: services.ErrTransient}
	}
}
