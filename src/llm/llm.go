package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	APIKey    string
	Model     string
	Providers []string
	// Endpoint overrides the OpenRouter chat completions URL.
	Endpoint string
}

var config *Config

// ErrNoText is returned when the model reports that the image has no text.
var ErrNoText = errors.New("no text detected in image")

func Init(cfg *Config) {
	config = cfg
}

// OpenRouter API structures
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

type Content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ProviderPreferences struct {
	Order          []string `json:"order,omitempty"`
	AllowFallbacks *bool    `json:"allow_fallbacks,omitempty"`
}

type ChatRequest struct {
	Model       string               `json:"model"`
	Messages    []Message            `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
	Provider    *ProviderPreferences `json:"provider,omitempty"`
}

type ChatResponse struct {
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

type Choice struct {
	Message ResponseMessage `json:"message"`
}

type ResponseMessage struct {
	Content string `json:"content"`
}

type APIError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // Can be string or number
}

const (
	openRouterURL = "https://openrouter.ai/api/v1/chat/completions"
	maxRetries    = 3
	initialDelay  = 1 * time.Second
	noTextMarker  = "NO_TEXT_FOUND"
)

const transcribePrompt = "Transcribe all text visible in this screenshot. Return ONLY the raw text with:\n" +
	"- No formatting\n" +
	"- No XML/HTML tags\n" +
	"- No markdown\n" +
	"- No explanations\n" +
	"- Preserve line breaks accurately from the visual layout.\n" +
	"If no text found, return '" + noTextMarker + "'"

func endpoint() string {
	if config != nil && config.Endpoint != "" {
		return config.Endpoint
	}
	return openRouterURL
}

// getProviderPreferences returns provider preferences based on config
func getProviderPreferences() *ProviderPreferences {
	if config == nil || len(config.Providers) == 0 {
		return nil
	}

	allowFallbacks := false
	return &ProviderPreferences{
		Order:          config.Providers,
		AllowFallbacks: &allowFallbacks,
	}
}

func validate() error {
	if config == nil {
		return fmt.Errorf("LLM client not initialized")
	}
	if config.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// Ping checks that the client is configured and the endpoint accepts the key.
func Ping(ctx context.Context) error {
	if err := validate(); err != nil {
		return err
	}
	request := ChatRequest{
		Model: config.Model,
		Messages: []Message{{
			Role:    "user",
			Content: []Content{{Type: "text", Text: "ping"}},
		}},
		MaxTokens: 1,
		Provider:  getProviderPreferences(),
	}
	_, err := makeAPIRequest(ctx, request)
	return err
}

// QueryVision sends a PNG to the configured vision model and returns the
// transcribed text.
func QueryVision(ctx context.Context, imageData []byte) (string, error) {
	if err := validate(); err != nil {
		return "", err
	}

	imageURL := fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(imageData))

	request := ChatRequest{
		Model: config.Model,
		Messages: []Message{
			{
				Role: "user",
				Content: []Content{
					{Type: "text", Text: transcribePrompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: imageURL}},
				},
			},
		},
		Temperature: 0.1,
		MaxTokens:   2000,
		Provider:    getProviderPreferences(),
	}

	// Retry logic with linear backoff
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(initialDelay) * (1.5 * float64(attempt)))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		response, err := makeAPIRequest(ctx, request)
		if err != nil {
			lastErr = err
			continue
		}

		if len(response.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in API response")
			continue
		}

		extractedText := strings.TrimSpace(response.Choices[0].Message.Content)
		if extractedText == "" || extractedText == noTextMarker {
			return "", ErrNoText
		}

		return cleanExtractedText(extractedText), nil
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func makeAPIRequest(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint(), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", config.APIKey))
	req.Header.Set("X-Title", "Screenotate")

	client := &http.Client{Timeout: 45 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s (type: %s, code: %v)", response.Error.Message, response.Error.Type, response.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	return &response, nil
}

func cleanExtractedText(text string) string {
	// Some vision models echo a closing image tag.
	return strings.TrimSpace(strings.TrimSuffix(text, "</image>"))
}
