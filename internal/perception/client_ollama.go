package perception

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"microagent/internal/config"
	"microagent/internal/logging"
	"microagent/internal/types"
)

// =============================================================================
// OLLAMA CHAT CLIENT
// =============================================================================

// OllamaClient talks to a local Ollama server through its /api/chat endpoint.
type OllamaClient struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewOllamaClient creates a new Ollama chat client.
func NewOllamaClient(endpoint, model string, timeout time.Duration) *OllamaClient {
	if endpoint == "" {
		endpoint = config.DefaultOllamaURL
	}
	if model == "" {
		model = config.DefaultOllamaModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &OllamaClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model returns the model name sent with each request.
func (c *OllamaClient) Model() string {
	return c.model
}

// Chat sends the full conversation and returns the assistant reply.
func (c *OllamaClient) Chat(ctx context.Context, messages []types.Message) (string, error) {
	req := ollamaChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	logging.APIDebug("ollama chat: model=%s, messages=%d, bytes=%d", c.model, len(messages), len(body))
	start := time.Now()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", describeOllamaError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var result ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama error: %s", result.Error)
	}

	logging.APIDebug("ollama chat completed in %v (%d chars)", time.Since(start), len(result.Message.Content))
	return result.Message.Content, nil
}

// describeOllamaError adds an operator hint for the two common failure modes.
func describeOllamaError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("ollama request cancelled: %w", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("request to Ollama timed out: %w", err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("cannot connect to Ollama, make sure it is running (ollama serve): %w", err)
	}
	return fmt.Errorf("ollama request failed: %w", err)
}

// =============================================================================
// OLLAMA API TYPES
// =============================================================================

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []types.Message `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message types.Message `json:"message"`
	Error   string        `json:"error,omitempty"`
}
