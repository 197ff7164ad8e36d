package llm

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

	"go.uber.org/zap"

	"github.com/spec-kit/training-service/internal/config"
)

// Fallback shown when the model listing endpoint is unavailable.
var defaultModels = []string{
	"models/gemini-2.0-flash-exp",
	"models/gemini-1.5-pro",
	"models/gemini-1.5-flash",
}

// GeminiClient calls the Generative Language REST API.
type GeminiClient struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	recorder Recorder
}

// NewGeminiClient builds a client from model configuration. The
// recorder may be nil.
func NewGeminiClient(cfg config.ModelConfig, logger *zap.Logger, recorder Recorder) *GeminiClient {
	return &GeminiClient{
		apiKey:   cfg.APIKey,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: cfg.Timeout()},
		logger:   logger,
		recorder: recorder,
	}
}

type generatePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *generateInlineData `json:"inline_data,omitempty"`
}

type generateInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate runs one completion and returns the concatenated text parts
// of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (text string, err error) {
	start := time.Now()
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordModelCall(req.Kind, err, time.Since(start))
		}
	}()

	parts := []generatePart{{Text: req.Prompt}}
	if req.Attachment != nil {
		parts = append(parts, generatePart{InlineData: &generateInlineData{
			MIMEType: req.Attachment.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(req.Attachment.Data),
		}})
	}

	body := generateRequest{Contents: []generateContent{{Parts: parts}}}
	body.GenerationConfig.Temperature = req.Temperature
	body.GenerationConfig.MaxOutputTokens = req.MaxTokens

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/%s:generateContent?key=%s", c.baseURL, req.Model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("model error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model returned status %d", resp.StatusCode)
	}
	if len(decoded.Candidates) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	var b strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

type listModelsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels returns the available generation models, filtered to the
// gemini family. Failures fall back to a static list so the picker
// still renders.
func (c *GeminiClient) ListModels(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/v1beta/models?key=%s", c.baseURL, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return defaultModels, nil
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("model listing failed", zap.Error(err))
		return defaultModels, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("model listing failed", zap.Int("status", resp.StatusCode))
		return defaultModels, nil
	}

	var decoded listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return defaultModels, nil
	}

	names := make([]string, 0, len(decoded.Models))
	for _, m := range decoded.Models {
		if strings.Contains(m.Name, "gemini") {
			names = append(names, m.Name)
		}
	}
	if len(names) == 0 {
		return defaultModels, nil
	}
	return names, nil
}
