package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// DiscordService delivers notifications through a Discord webhook. A service
// constructed with an empty webhook URL is disabled: every call becomes a
// no-op so callers do not have to guard each post.
type DiscordService struct {
	webhookURL string
	client     *http.Client
}

func NewDiscordService(webhookURL string) *DiscordService {
	return &DiscordService{
		webhookURL: strings.TrimSpace(webhookURL),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Enabled reports whether a webhook URL is configured.
func (s *DiscordService) Enabled() bool {
	return s.webhookURL != ""
}

// PostContent sends one text message. Delivery failures are returned, never
// retried; the caller logs and moves on.
func (s *DiscordService) PostContent(ctx context.Context, content string) error {
	if !s.Enabled() {
		return nil
	}

	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, "POST", s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// UploadedMessage identifies a webhook message that carried a file, so the
// caller can attempt to pin it.
type UploadedMessage struct {
	MessageID string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// UploadFile posts a file attachment with a message. The webhook must be
// called with ?wait=true to get the created message back.
func (s *DiscordService) UploadFile(ctx context.Context, content, filename string, file io.Reader) (*UploadedMessage, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("discord webhook not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("content", content); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	uploadURL := s.webhookURL
	if !strings.Contains(uploadURL, "wait=true") {
		sep := "?"
		if strings.Contains(uploadURL, "?") {
			sep = "&"
		}
		uploadURL += sep + "wait=true"
	}

	reqCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, "POST", uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("discord upload returned status %d", resp.StatusCode)
	}

	var msg UploadedMessage
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	return &msg, nil
}

// PinMessage pins an uploaded message in its channel. Pinning reuses the
// webhook token as a bot credential, which only works on some servers, so
// failures are reported but treated as best-effort by callers.
func (s *DiscordService) PinMessage(ctx context.Context, msg *UploadedMessage) error {
	if msg == nil || msg.MessageID == "" || msg.ChannelID == "" {
		return fmt.Errorf("upload response missing message or channel id")
	}

	parts := strings.Split(s.webhookURL, "/")
	token := parts[len(parts)-1]
	pinURL := fmt.Sprintf("https://discord.com/api/v10/channels/%s/pins/%s", msg.ChannelID, msg.MessageID)

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, "PUT", pinURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to pin message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord pin returned status %d", resp.StatusCode)
	}
	return nil
}
