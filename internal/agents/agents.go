// Package agents implements the LLM-backed collaborators behind the engine's
// Planner, Observer, Expert, QuestionGenerator and ReportWriter contracts.
// Every agent sends an embedded system prompt plus a JSON context payload and
// decodes structured output; malformed output is repaired or rejected at this
// boundary so the engine core never sees free-form prose where data belongs.
package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"techpanel/internal/config"
)

// Request is one model invocation.
type Request struct {
	System string
	User   string
	// JSON constrains the response to application/json.
	JSON bool
}

// TextModel abstracts the underlying LLM call so agents can be exercised
// against canned responses.
type TextModel interface {
	Generate(ctx context.Context, profile config.AgentProfile, req Request) (string, error)
}

// =============================================================================
// GEMINI BACKEND
// =============================================================================

// Gemini is the production TextModel backed by the Google GenAI API.
type Gemini struct {
	client *genai.Client
	log    *zap.Logger
}

// NewGemini creates the shared GenAI client. All agents multiplex over it;
// per-agent model and sampling settings travel in the AgentProfile.
func NewGemini(ctx context.Context, apiKey string, log *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, log: log}, nil
}

// Generate runs one completion with per-profile retries. Retries use a short
// linear backoff; the context cancels the wait.
func (g *Gemini) Generate(ctx context.Context, profile config.AgentProfile, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(profile.Temperature)),
		MaxOutputTokens: int32(profile.MaxOutputTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	attempts := profile.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			g.log.Warn("retrying model call",
				zap.String("model", profile.Model),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := g.client.Models.GenerateContent(ctx, profile.Model, genai.Text(req.User), cfg)
		if err != nil {
			lastErr = err
			continue
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			lastErr = fmt.Errorf("model %s returned an empty response", profile.Model)
			continue
		}
		return text, nil
	}
	return "", fmt.Errorf("model call failed after %d attempts: %w", attempts, lastErr)
}
