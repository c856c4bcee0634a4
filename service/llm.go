package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// LLM is the language-model collaborator boundary. Instructions set the
// system framing, content is the user prompt, and the reply is unstructured
// text with no contractual guarantee on its shape - all downstream parsing
// must be defensive.
type LLM interface {
	Generate(ctx context.Context, instructions, content string) (string, error)
}

var ErrGenerationFailed = errors.New("failed to generate content")

const (
	defaultGeminiModel = "gemini-2.0-flash"
	maxRetries         = 3
	initialBackoff     = time.Second
	maxPromptChars     = 30000
)

// GeminiLLM implements LLM using the Gemini API
type GeminiLLM struct {
	client *genai.Client
	model  string
}

// NewGeminiLLM creates a Gemini-backed collaborator. An empty model name
// selects the default model.
func NewGeminiLLM(client *genai.Client, model string) *GeminiLLM {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiLLM{client: client, model: model}
}

// Generate sends a prompt to Gemini with retry and exponential backoff.
// Transport or quota failures after all retries are returned to the caller;
// there is no fallback text for a failed collaborator call.
func (g *GeminiLLM) Generate(ctx context.Context, instructions, content string) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini client not set")
	}

	model := g.client.GenerativeModel(g.model)
	if instructions != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(instructions)},
		}
	}

	// Truncate prompt if too long to avoid context limits
	prompt := content
	if len(prompt) > maxPromptChars {
		prompt = prompt[:maxPromptChars] + "\n\n[Content truncated due to length...]"
		log.Printf("Warning: Prompt too long (%d chars), truncating to %d chars", len(content), maxPromptChars)
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			continue
		}

		text := collectText(resp)
		if text == "" {
			lastErr = ErrGenerationFailed
			continue
		}
		return text, nil
	}

	return "", fmt.Errorf("failed to generate content after %d attempts: %w", maxRetries, lastErr)
}

// collectText joins the text parts of all candidates
func collectText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for i, candidate := range resp.Candidates {
		if candidate.Content == nil {
			log.Printf("Warning: Candidate %d has no content (finish reason: %v)", i, candidate.FinishReason)
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(builder.String())
}
