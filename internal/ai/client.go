// Package ai talks to the external model host (an Ollama-compatible HTTP
// endpoint) for the two calls the AI worker makes: a vision pass over the
// event's two stills and a text pass that condenses the result into a short
// phrase.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const visionPrompt = "these pictures are taken from a security camera four seconds apart mounted on a house. " +
	"tell me the differences between the two pictures."

const phrasePromptPrefix = "this is a description of an image taken from a security camera. Motion was detected " +
	"causing this picture to be taken. describe for me in a short phrase what this motion was " +
	"based on this description given. The phrase is used for efficiency of alerts in logs of " +
	"security footage. Give the phrase only, nothing else."

// MaxPhraseLen caps the stored short phrase, in characters (the ai_phrase
// column is VARCHAR(500), which PostgreSQL counts in characters too).
const MaxPhraseLen = 500

// Client calls the model host. Timeout bounds each individual call.
type Client struct {
	BaseURL     string
	VisionModel string
	TextModel   string
	Timeout     time.Duration

	httpClient *http.Client
}

func NewClient(baseURL, visionModel, textModel string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		VisionModel: visionModel,
		TextModel:   textModel,
		Timeout:     timeout,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Describe submits both stills to the vision model and returns its prose
// description of what changed between them.
func (c *Client) Describe(ctx context.Context, imageA, imageB []byte) (string, error) {
	return c.generate(ctx, generateRequest{
		Model:  c.VisionModel,
		Prompt: visionPrompt,
		Images: []string{
			base64.StdEncoding.EncodeToString(imageA),
			base64.StdEncoding.EncodeToString(imageB),
		},
	})
}

// ExtractPhrase condenses a vision description into a short alert phrase,
// truncated to MaxPhraseLen.
func (c *Client) ExtractPhrase(ctx context.Context, description string) (string, error) {
	phrase, err := c.generate(ctx, generateRequest{
		Model:  c.TextModel,
		Prompt: fmt.Sprintf("%s\n%q", phrasePromptPrefix, description),
	})
	if err != nil {
		return "", err
	}
	phrase = stripReasoning(phrase)
	// Truncate by characters, not bytes: slicing mid-rune would produce
	// invalid UTF-8 the database rejects.
	if utf8.RuneCountInString(phrase) > MaxPhraseLen {
		phrase = string([]rune(phrase)[:MaxPhraseLen])
	}
	return phrase, nil
}

func (c *Client) generate(ctx context.Context, payload generateRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model host: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model host: status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("model host: decode response: %w", err)
	}
	return strings.TrimSpace(out.Response), nil
}

// stripReasoning removes <think>...</think> blocks some reasoning models
// prepend to their answer.
func stripReasoning(s string) string {
	for {
		start := strings.Index(s, "<think>")
		if start < 0 {
			break
		}
		end := strings.Index(s, "</think>")
		if end < 0 {
			s = s[:start]
			break
		}
		s = s[:start] + s[end+len("</think>"):]
	}
	return strings.TrimSpace(s)
}
