package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raphaelgruber/flirtassist/internal/client"
	"github.com/tmc/langchaingo/llms"
)

// ErrEmptyRequest is returned when a request carries nothing to reply to.
var ErrEmptyRequest = errors.New("request has no image, text or thread context")

// Generate answers a webhook request: it reads the screenshot if present,
// merges it with the thread context and asks the model for suggestions.
func (g *Generator) Generate(ctx context.Context, req client.Request) (*client.Response, error) {
	hasContext := req.Thread != nil && len(req.Thread.Context) > 0
	if req.ImageBase64 == "" && strings.TrimSpace(req.Text) == "" && !hasContext {
		return nil, ErrEmptyRequest
	}

	parts := []llms.ContentPart{
		llms.TextContent{Text: userPrompt(req.Text, req.Thread, req.ImageBase64 != "")},
	}
	if req.ImageBase64 != "" {
		img, mime, err := decodeImage(req.ImageBase64)
		if err != nil {
			return nil, err
		}
		parts = append(parts, llms.BinaryPart(mime, img))
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt(req.Mood)),
		{Role: llms.ChatMessageTypeHuman, Parts: parts},
	}

	raw, err := g.generateContent(ctx, messages, llms.WithTemperature(0.9), llms.WithMaxTokens(1024))
	if err != nil {
		return nil, err
	}

	resp, err := parseAnswer(raw)
	if err != nil {
		g.logger.Warn("unusable model answer", "model", g.modelName, "answer", truncate(raw, 200))
		return nil, err
	}
	// Text already extracted by the caller is returned as the OCR text.
	if resp.OCRText == "" && req.ImageBase64 == "" {
		resp.OCRText = strings.TrimSpace(req.Text)
	}
	return resp, nil
}

// decodeImage accepts plain base64 or a data URL.
func decodeImage(s string) ([]byte, string, error) {
	mime := ""
	if strings.HasPrefix(s, "data:") {
		header, payload, ok := strings.Cut(s, ",")
		if !ok {
			return nil, "", fmt.Errorf("decode image: malformed data url")
		}
		mime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		s = payload
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
