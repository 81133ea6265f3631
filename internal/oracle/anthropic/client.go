package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/invoice-insights/internal/entity"
	"github.com/joseph-ayodele/invoice-insights/internal/oracle"
)

// ExtractInvoice implements oracle.Oracle against the Anthropic messages API,
// sending the document as a base64 image block plus the profile's prompt.
func (c *Client) ExtractInvoice(ctx context.Context, req oracle.Request) (*entity.InvoiceRecord, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("oracle.extract.start",
		"req_id", rid,
		"provider", "anthropic",
		"model", c.cfg.Model,
		"media_type", req.MediaType,
		"image_bytes", len(req.Image),
		"profile", string(req.Profile),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "image",
						"source": map[string]any{
							"type":       "base64",
							"media_type": req.MediaType,
							"data":       base64.StdEncoding.EncodeToString(req.Image),
						},
					},
					{"type": "text", "text": oracle.PromptFor(req.Profile)},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/messages"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("oracle.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var msg struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Error("oracle.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}

	// The API returns content blocks; join the text ones.
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		c.logger.Error("oracle.extract.empty_response",
			"req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("no text content in anthropic response")
	}

	inv, err := oracle.DecodeInvoiceResponse(sb.String(), c.logger)
	if err != nil {
		c.logger.Error("oracle.extract.parse_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	c.logger.Info("oracle.extract.ok",
		"req_id", rid,
		"items", len(inv.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return inv, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.Warn("anthropic response body close error", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("anthropic status %d: %s", resp.StatusCode, buf.String())
	}

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return buf.Bytes(), nil
}
