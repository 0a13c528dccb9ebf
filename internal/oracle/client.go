// Package oracle wraps the external LLM scoring service behind a rate-limited,
// key-rotating client. The oracle is treated as an opaque function from a
// prompt to a JSON document; everything else (budget, credential rotation,
// retry, fence stripping) lives here.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/meghanahima/Resume-Matches-sub000/internal/keypool"
)

// ErrBudgetExhausted is returned when the local request budget for the current
// window is spent. This is not a failure of the oracle itself; callers score
// the affected jobs from the preliminary signal and keep going.
var ErrBudgetExhausted = errors.New("oracle: request budget exhausted")

// ErrKeysExhausted is returned when every credential was rejected with a quota
// error within one request's retry ceiling.
var ErrKeysExhausted = errors.New("oracle: all API keys quota-exhausted")

// Generator is the surface the refinement engine consumes. Implementations
// return the response body with markdown fencing already stripped.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Config holds the generation parameters for the scoring oracle.
type Config struct {
	Model           string
	MaxRetries      int // retry ceiling for quota-triggered key rotation
	Temperature     float32
	MaxOutputTokens int32
	TopP            float32
	TopK            int32
}

// DefaultConfig returns the generation parameters used by the ranking
// pipeline. Low temperature keeps batch scores stable across runs.
func DefaultConfig() *Config {
	return &Config{
		Model:           "gemini-2.0-flash",
		MaxRetries:      3,
		Temperature:     0.2,
		MaxOutputTokens: 2048,
		TopP:            0.8,
		TopK:            40,
	}
}

// Client is the Gemini-backed oracle client.
type Client struct {
	pool   *keypool.Pool
	budget *Budget
	config *Config
	logger *zap.Logger

	// call performs one request with a specific credential. Defaults to the
	// Gemini round-trip; swapped out in tests.
	call func(ctx context.Context, key, prompt string) (string, error)
}

// NewClient creates an oracle client over the given credential pool and
// request budget. Both are owned by the caller and shared process-wide.
func NewClient(pool *keypool.Pool, budget *Budget, config *Config, logger *zap.Logger) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		pool:   pool,
		budget: budget,
		config: config,
		logger: logger,
	}
	c.call = c.generateWithKey
	return c
}

// GenerateJSON sends one scoring request to the oracle. The budget is checked
// before anything is sent; quota responses (HTTP 429) rotate the credential
// and retry the same request up to the configured ceiling. The returned text
// is fence-stripped and guaranteed to be valid JSON.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if !c.budget.Allow() {
		return "", ErrBudgetExhausted
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		key := c.pool.Current()

		text, err := c.call(ctx, key, prompt)
		if err == nil {
			cleaned := CleanJSONBlock(text)
			if !json.Valid([]byte(cleaned)) {
				return "", fmt.Errorf("oracle returned invalid JSON: %s", truncate(cleaned, 200))
			}
			return cleaned, nil
		}

		if isQuotaError(err) {
			c.pool.MarkFailed()
			c.logger.Warn("oracle quota exceeded, rotating API key",
				zap.Int("attempt", attempt+1),
				zap.Int("failed_keys", c.pool.FailedCount()),
			)
			lastErr = err
			continue
		}

		return "", fmt.Errorf("oracle call failed: %w", err)
	}

	return "", fmt.Errorf("%w (last error: %v)", ErrKeysExhausted, lastErr)
}

// generateWithKey performs a single Gemini call with a specific credential.
// The SDK binds a client to one key, so a fresh client is built per attempt;
// construction is cheap relative to the generation round-trip.
func (c *Client) generateWithKey(ctx context.Context, key, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.config.Model)
	model.SetTemperature(c.config.Temperature)
	model.SetMaxOutputTokens(c.config.MaxOutputTokens)
	model.SetTopP(c.config.TopP)
	model.SetTopK(c.config.TopK)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	return extractText(resp)
}

// extractText pulls the concatenated text parts out of a Gemini response.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in oracle response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in oracle response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in oracle response")
	}

	return strings.Join(parts, ""), nil
}

// isQuotaError reports whether an error is the oracle's own rate-limit
// response, as opposed to local budget exhaustion or a hard failure.
func isQuotaError(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 429
	}
	// The SDK sometimes surfaces quota errors without a typed wrapper.
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
