package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// GenerateRequest describes one generateContent call.
type GenerateRequest struct {
	Prompt string
	// EnableSearch asks the oracle to ground the answer with its live
	// web-search tool.
	EnableSearch bool
	// JSONOutput requests application/json output. The API rejects structured
	// output combined with the search tool, so callers set at most one of
	// JSONOutput and EnableSearch.
	JSONOutput bool
	// Schema optionally constrains JSON output to an exact shape.
	Schema json.RawMessage
}

// WebSource is the web object of a grounding chunk. Either field may be empty.
type WebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GroundingChunk is one citation from the oracle's grounding metadata.
type GroundingChunk struct {
	Web *WebSource `json:"web"`
}

// GenerateResult is the part of the oracle reply the service consumes.
type GenerateResult struct {
	Text      string
	Grounding []GroundingChunk
}

type Client interface {
	GenerateContent(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Configured() bool
	GetHTTPClient() *http.Client
}

type geminiClient struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

func NewGeminiClient(baseURL, model, apiKey string) Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &geminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []GroundingChunk `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *geminiClient) Configured() bool {
	return c.apiKey != ""
}

func (c *geminiClient) GenerateContent(ctx context.Context, genReq GenerateRequest) (*GenerateResult, error) {
	body := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: genReq.Prompt}}}},
	}
	if genReq.EnableSearch {
		body.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}
	if genReq.JSONOutput {
		body.GenerationConfig = &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   genReq.Schema,
		}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling oracle request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("oracle API error %d (%s): %s",
				apiErr.Error.Code, apiErr.Error.Status, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	var genResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("oracle returned malformed JSON: %w", err)
	}

	result := &GenerateResult{}
	if len(genResp.Candidates) > 0 {
		cand := genResp.Candidates[0]
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		result.Text = sb.String()
		if cand.GroundingMetadata != nil {
			result.Grounding = cand.GroundingMetadata.GroundingChunks
		}
	}

	return result, nil
}

func (c *geminiClient) GetHTTPClient() *http.Client {
	return c.client
}
