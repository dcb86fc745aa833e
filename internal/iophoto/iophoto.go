// Package iophoto estimates food and nutrients on photos through an AI
// gateway that speaks JSON-RPC "tools/call".
package iophoto

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gizisehat/gizi/pkg/config"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/nutrient"
)

// ServiceName identifies the provider in errors and logs.
const ServiceName = "photo analysis"

const systemPrompt = `You are a pediatric nutrition assistant for Indonesian
families. Identify the food on the photo and estimate nutrients of the
portion a young child ate.

Always respond with valid JSON in this exact format:
{
  "food": "name of the dish",
  "food_id": "catalog id when the dish is in the catalog, else empty",
  "portion": [number of catalog portions, 1 when unsure],
  "nutrients": {"energy": [kcal], "protein": [g], "iron": [mg], "zinc": [mg]},
  "confidence": [number between 0 and 1]
}`

type client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
	foods      []nutrient.FoodItem
}

// Option configures the client.
type Option func(*client)

// OptHTTPClient replaces the default HTTP client.
func OptHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.httpClient = c
	}
}

// OptFoods lists catalog foods in the prompt so the model can return
// their IDs.
func OptFoods(items []nutrient.FoodItem) Option {
	return func(cl *client) {
		cl.foods = items
	}
}

// New creates a PhotoAnalyzer for the gateway in cfg. Deadlines come
// from the context of every call.
func New(cfg config.PhotoConfig, opts ...Option) gizi.PhotoAnalyzer {
	res := &client{
		httpClient: &http.Client{},
		url:        strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Analyze sends the photo to the gateway. Every failure, including an
// answer that cannot be understood, is an ExternalServiceFailure.
func (c *client) Analyze(
	ctx context.Context,
	p gizi.Photo,
) (gizi.PhotoEstimate, error) {
	if len(p.Data) == 0 {
		return gizi.PhotoEstimate{}, EmptyPhotoError()
	}
	if c.url == "" {
		return gizi.PhotoEstimate{}, gizi.ExternalServiceError(
			ServiceName, errors.New("photo.url is not configured"))
	}

	text, err := c.callGateway(ctx, "create_completion", c.request(p))
	if err != nil {
		return gizi.PhotoEstimate{}, gizi.ExternalServiceError(ServiceName, err)
	}
	res, err := parseEstimate(text)
	if err != nil {
		slog.Warn("Unusable photo analysis", "error", err)
		return gizi.PhotoEstimate{}, gizi.ExternalServiceError(ServiceName, err)
	}
	slog.Debug("Photo analysed", "food", res.Food, "confidence", res.Confidence)
	return res, nil
}

func (c *client) request(p gizi.Photo) map[string]any {
	mime := p.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	prompt := "Analyse this food photo."
	if p.Hint != "" {
		prompt += fmt.Sprintf(" The caregiver says it is %q.", p.Hint)
	}
	if len(c.foods) > 0 {
		var b strings.Builder
		b.WriteString("\nCatalog (id: name, portion):\n")
		for _, f := range c.foods {
			fmt.Fprintf(&b, "- %s: %s, %s\n", f.ID, f.Name, f.Portion)
		}
		prompt += b.String()
	}

	return map[string]any{
		"model":         c.model,
		"system_prompt": systemPrompt,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type":      "image",
						"mime_type": mime,
						"data":      base64.StdEncoding.EncodeToString(p.Data),
					},
					{"type": "text", "text": prompt},
				},
			},
		},
		"max_tokens":  800,
		"temperature": 0.1,
	}
}

type rpcRequest struct {
	JSONRPC string                   `json:"jsonrpc"`
	ID      int                      `json:"id"`
	Method  string                   `json:"method"`
	Params  protocol.CallToolRequest `json:"params"`
}

type rpcResponse struct {
	Result *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *client) callGateway(
	ctx context.Context,
	toolName string,
	args map[string]any,
) (string, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  protocol.CallToolRequest{Name: toolName, Arguments: args},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.url+"/openrouter-gateway", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("request failed with status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var rpc rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if rpc.Error != nil {
		return "", fmt.Errorf("gateway error %d: %s", rpc.Error.Code, rpc.Error.Message)
	}
	if rpc.Result == nil || len(rpc.Result.Content) == 0 {
		return "", errors.New("unexpected response format")
	}
	if rpc.Result.IsError {
		return "", fmt.Errorf("gateway tool error: %s", rpc.Result.Content[0].Text)
	}
	return rpc.Result.Content[0].Text, nil
}

// parseEstimate accepts the model answer either directly or wrapped as
// {"content": "..."} by the completion tool.
func parseEstimate(text string) (gizi.PhotoEstimate, error) {
	var wrapped struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && wrapped.Content != nil {
		text = *wrapped.Content
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return gizi.PhotoEstimate{}, errors.New("no JSON object in answer")
	}

	var res gizi.PhotoEstimate
	if err := json.Unmarshal([]byte(text[start:end+1]), &res); err != nil {
		return gizi.PhotoEstimate{}, fmt.Errorf("cannot parse answer: %w", err)
	}
	res.Food = strings.TrimSpace(res.Food)
	if res.Food == "" {
		return gizi.PhotoEstimate{}, errors.New("answer has no food")
	}
	if res.Portion <= 0 {
		res.Portion = 1
	}
	if res.FoodID == "" && (res.Nutrients == nil || res.Nutrients.IsZero()) {
		return gizi.PhotoEstimate{}, errors.New("answer has neither food_id nor nutrients")
	}
	return res, nil
}
