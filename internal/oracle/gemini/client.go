// Package gemini provides a Google Gemini implementation of the extraction
// oracle, for deployments without Anthropic access.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/invoice-insights/internal/entity"
	"github.com/joseph-ayodele/invoice-insights/internal/oracle"
)

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
	logger *slog.Logger
}

func NewClient(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	var temp float32 // extraction wants deterministic output
	model.Temperature = &temp

	return &Client{client: client, model: model, name: modelName, logger: logger}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.name }

// ExtractInvoice implements oracle.Oracle via Gemini's multimodal content API.
func (c *Client) ExtractInvoice(ctx context.Context, req oracle.Request) (*entity.InvoiceRecord, error) {
	start := time.Now()
	c.logger.Info("oracle.extract.start",
		"provider", "gemini",
		"model", c.name,
		"media_type", req.MediaType,
		"image_bytes", len(req.Image),
		"profile", string(req.Profile),
	)

	// genai.ImageData wants the format suffix, not the full MIME type.
	format := strings.TrimPrefix(req.MediaType, "image/")
	parts := []genai.Part{
		genai.ImageData(format, req.Image),
		genai.Text(oracle.PromptFor(req.Profile)),
	}

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		c.logger.Error("oracle.extract.generate_error",
			"error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	inv, err := oracle.DecodeInvoiceResponse(sb.String(), c.logger)
	if err != nil {
		c.logger.Error("oracle.extract.parse_failed",
			"error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	c.logger.Info("oracle.extract.ok",
		"items", len(inv.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return inv, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}
