// Package ollama implements enrich.Enricher against a local Ollama server,
// adapted from the teacher's internal/ai client: same request/response
// shapes, generalized to the enrichment contract this system defines
// (summary + weighted keywords + weighted concepts + embedding in one
// call) instead of exposing separate embedding/generate methods.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shirokuma-library/mcp-knowledge-base/internal/enrich"
	"github.com/shirokuma-library/mcp-knowledge-base/internal/logging"
)

var log = logging.GetLogger("enrich/ollama")

// Config configures the Ollama-backed enricher.
type Config struct {
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

// Enricher calls a local Ollama server for embeddings and a chat model for
// summary/keyword/concept extraction.
type Enricher struct {
	cfg    Config
	client *http.Client
}

// New constructs an Ollama-backed Enricher, filling in the same defaults
// the teacher client does.
func New(cfg Config) *Enricher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "nomic-embed-text"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "qwen2.5:3b"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Enricher{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// extraction is the JSON shape the chat model is prompted to return.
type extraction struct {
	Summary  string             `json:"summary"`
	Keywords []weightedJSON     `json:"keywords"`
	Concepts []weightedJSON     `json:"concepts"`
}

type weightedJSON struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Enrich runs embedding generation and chat-based extraction concurrently
// enough to matter little for a single call: it's two sequential HTTP
// calls, but either failing independently still yields a partial Result
// (spec §4.8: "All four outputs are optional").
func (e *Enricher) Enrich(ctx context.Context, text string) (*enrich.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, enrich.ErrUnavailable
	}

	result := &enrich.Result{}
	var anyOK bool

	if vec, err := e.embed(ctx, text); err != nil {
		log.Warn("embedding generation failed", "error", err)
	} else {
		result.Embedding = vec
		anyOK = true
	}

	if ex, err := e.extract(ctx, text); err != nil {
		log.Warn("extraction failed", "error", err)
	} else {
		if ex.Summary != "" {
			s := ex.Summary
			result.Summary = &s
		}
		for _, kw := range ex.Keywords {
			result.Keywords = append(result.Keywords, enrich.Weighted{Name: kw.Name, Weight: kw.Weight})
		}
		for _, c := range ex.Concepts {
			result.Concepts = append(result.Concepts, enrich.Weighted{Name: c.Name, Weight: c.Weight})
		}
		anyOK = true
	}

	if !anyOK {
		return nil, enrich.ErrUnavailable
	}
	return result, nil
}

func (e *Enricher) embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(embeddingRequest{Model: e.cfg.EmbeddingModel, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/api/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", enrich.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", enrich.ErrUnavailable, resp.StatusCode, string(body))
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}

	vec := make([]float32, len(out.Embedding))
	for i, f := range out.Embedding {
		vec[i] = float32(f)
	}
	return vec, nil
}

const extractionPrompt = `Summarize the following text in one paragraph, and extract weighted
keywords and higher-level concepts. Respond with JSON only, shaped as:
{"summary": "...", "keywords": [{"name": "...", "weight": 0.0}], "concepts": [{"name": "...", "weight": 0.0}]}
Weights are between 0 and 1.

Text:
%s`

func (e *Enricher) extract(ctx context.Context, text string) (*extraction, error) {
	prompt := fmt.Sprintf(extractionPrompt, text)
	reqBody, err := json.Marshal(generateRequest{Model: e.cfg.ChatModel, Prompt: prompt, Stream: false, Format: "json"})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", enrich.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", enrich.ErrUnavailable, resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode generate response: %w", err)
	}

	var ex extraction
	if err := json.Unmarshal([]byte(genResp.Response), &ex); err != nil {
		return nil, fmt.Errorf("failed to parse extraction JSON: %w", err)
	}
	return &ex, nil
}
