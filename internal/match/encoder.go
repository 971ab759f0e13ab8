// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SeverinoCenter/nsf-award-extract/internal/httputil"
	"github.com/SeverinoCenter/nsf-award-extract/pkg/types"
)

// Encoder turns texts into fixed-length vectors. The matcher only needs
// this contract; the model behind it is opaque. Implementations return
// one vector per input, in input order.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// encodeBatch bounds how many texts go into one API request.
const encodeBatch = 64

// HTTPEncoder calls an OpenAI-compatible /v1/embeddings endpoint.
type HTTPEncoder struct {
	Client   *http.Client
	Endpoint string
	Model    string
	APIKey   string
	// UserAgent is sent with each request; empty uses the client default.
	UserAgent string
}

// NewHTTPEncoder builds an encoder from the match configuration.
func NewHTTPEncoder(cfg types.MatchConfig) *HTTPEncoder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPEncoder{
		Client:    &http.Client{Timeout: timeout},
		Endpoint:  cfg.Endpoint,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Encode embeds texts, splitting the request into API-sized batches.
func (e *HTTPEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += encodeBatch {
		end := start + encodeBatch
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.encodeBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *HTTPEncoder) encodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Model: e.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := strings.TrimSuffix(e.Endpoint, "/") + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.UserAgent != "" {
		req.Header.Set("User-Agent", e.UserAgent)
	}
	if e.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, e.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("embeddings API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned HTTP %d", resp.StatusCode)
	}

	var er embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing embeddings response: %w", err)
	}
	if len(er.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(er.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range er.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings API returned out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
