package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/rshade/enrichr/internal/logging"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// ErrMissingAPIKey indicates no API key was supplied for the Gemini client.
var ErrMissingAPIKey = errors.New("gemini API key is not set")

// generator is the part of genai.Models the adapter needs.
type generator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiConfig configures NewGemini.
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature *float32
	Prompt      *Prompt
	// Search lets the model ground its answers with Google Search.
	Search bool
}

// GeminiAdapter implements Adapter on top of the Gemini generateContent API.
type GeminiAdapter struct {
	models generator
	model  string
	config *genai.GenerateContentConfig
	prompt *Prompt
}

// NewGemini creates a Gemini adapter for the Gemini API backend.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*GeminiAdapter, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Prompt == nil {
		return nil, errors.New("gemini adapter requires a prompt template")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return newGeminiWithGenerator(client.Models, cfg), nil
}

// newGeminiWithGenerator builds an adapter around an existing generator.
func newGeminiWithGenerator(gen generator, cfg GeminiConfig) *GeminiAdapter {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &GeminiAdapter{
		models: gen,
		model:  cfg.Model,
		config: generateConfig(cfg),
		prompt: cfg.Prompt,
	}
}

// generateConfig builds the per-request settings shared by every lookup.
func generateConfig(cfg GeminiConfig) *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{Temperature: cfg.Temperature}
	if cfg.Search {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return gc
}

// Lookup renders the prompt for names, calls the model and parses the JSON
// array out of the answer.
func (a *GeminiAdapter) Lookup(ctx context.Context, names []string) ([]Record, error) {
	log := logging.FromContext(ctx)

	text, err := a.prompt.Render(names)
	if err != nil {
		return nil, err
	}

	resp, err := a.models.GenerateContent(ctx, a.model, genai.Text(text), a.config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate (%s): %w", a.model, err)
	}

	answer := responseText(resp)
	records, err := ParseRecords(answer)
	if err != nil {
		log.Debug().
			Str("model", a.model).
			Int("names", len(names)).
			Str("response_head", head(answer, 200)). //nolint:mnd // Enough to diagnose a bad answer.
			Msg("could not parse lookup response")
		return nil, err
	}

	if e := log.Debug(); e.Enabled() {
		e.Str("model", a.model).
			Int("names", len(names)).
			Int("records", len(records)).
			Int("search_queries", searchQueries(resp)).
			Dict("usage", usageDict(resp)).
			Msg("lookup answered")
	}
	return records, nil
}

// responseText concatenates the text parts of every candidate's content.
// Thought parts are skipped.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func searchQueries(resp *genai.GenerateContentResponse) int {
	n := 0
	for _, cand := range resp.Candidates {
		if cand != nil && cand.GroundingMetadata != nil {
			n += len(cand.GroundingMetadata.WebSearchQueries)
		}
	}
	return n
}

func usageDict(resp *genai.GenerateContentResponse) *zerolog.Event {
	d := zerolog.Dict()
	if resp != nil && resp.UsageMetadata != nil {
		d.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount).
			Int32("candidate_tokens", resp.UsageMetadata.CandidatesTokenCount).
			Int32("tool_prompt_tokens", resp.UsageMetadata.ToolUsePromptTokenCount)
	}
	return d
}

// head returns at most n bytes of s, cut back to a rune boundary.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
