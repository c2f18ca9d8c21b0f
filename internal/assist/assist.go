// Package assist asks the Gemini API to rank registry candidates for
// labels no matching rule resolved. Suggestions are advisory: they are
// logged for curators and never written to annotated output.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/agentstation/cellmap/pkg/constants"
	"github.com/agentstation/cellmap/pkg/errors"
	"github.com/agentstation/cellmap/pkg/logging"
	"github.com/agentstation/cellmap/pkg/registry"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-2.0-flash"

	// DefaultLimit is the number of ranked candidates requested per label.
	DefaultLimit = 3

	apiKeyEnv = "GEMINI_API_KEY"
)

// Suggestion ranks registry codes for one unmatched label, best first.
type Suggestion struct {
	Label      string   `json:"label"`
	Candidates []string `json:"candidates"`
}

// Classifier suggests registry rows for unmatched labels.
type Classifier interface {
	Suggest(ctx context.Context, labels []string, table *registry.Table) ([]Suggestion, error)
}

// classifier is the Gemini-backed implementation of Classifier.
type classifier struct {
	client      *genai.Client
	model       string
	limit       int
	httpOptions *genai.HTTPOptions
}

// Option configures a Classifier.
type Option func(*classifier)

// WithModel overrides the default Gemini model.
func WithModel(model string) Option {
	return func(c *classifier) {
		c.model = model
	}
}

// WithLimit sets how many candidates are requested per label.
func WithLimit(n int) Option {
	return func(c *classifier) {
		c.limit = n
	}
}

// WithHTTPOptions overrides the client's HTTP options.
func WithHTTPOptions(opts genai.HTTPOptions) Option {
	return func(c *classifier) {
		c.httpOptions = &opts
	}
}

// New creates a Gemini classifier. The API key falls back to the
// GEMINI_API_KEY environment variable.
func New(ctx context.Context, apiKey string, opts ...Option) (Classifier, error) {
	c := &classifier{
		model: DefaultModel,
		limit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}

	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnv)
	}
	if apiKey == "" {
		return nil, errors.NewConfigError("assist",
			fmt.Sprintf("API key required: set %s", apiKeyEnv), nil)
	}

	config := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	}
	if c.httpOptions != nil {
		config.HTTPOptions = *c.httpOptions
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, errors.NewConfigError("assist", "creating Gemini client", err)
	}
	c.client = client
	return c, nil
}

// Suggest sends the labels and the registry's names to the model and
// returns its ranked candidates, filtered to codes that actually exist.
func (c *classifier) Suggest(ctx context.Context, labels []string, table *registry.Table) ([]Suggestion, error) {
	if table == nil {
		return nil, errors.NewValidationError("table", nil, "registry table required")
	}
	if len(labels) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.SuggestTimeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(buildPrompt(labels, table, c.limit)), generateConfig())
	if err != nil {
		return nil, errors.WrapSource("assist", "", err)
	}

	return parseSuggestions(resp.Text(), labels, table, c.limit)
}

// generateConfig constrains the response to the suggestion JSON shape.
func generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"label":      {Type: genai.TypeString},
					"candidates": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				},
				Required: []string{"label", "candidates"},
			},
		},
	}
}

// buildPrompt lists the unmatched labels and one line per registry row:
// code, name, synonyms.
func buildPrompt(labels []string, table *registry.Table, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match each free-text cell line label to the most likely registry entries.\n")
	fmt.Fprintf(&b, "Return at most %d candidate codes per label, best match first.\n", limit)
	fmt.Fprintf(&b, "Only use codes from the registry below. Return an empty candidate list when nothing fits.\n\n")

	b.WriteString("Labels:\n")
	for _, label := range labels {
		fmt.Fprintf(&b, "- %s\n", label)
	}

	b.WriteString("\nRegistry (code\tname\tsynonyms):\n")
	for i := range table.Rows {
		row := &table.Rows[i]
		name := row.CellosaurusName
		if registry.IsMissing(name) {
			name = ""
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\n", row.CellLine, name, strings.Join(row.Synonyms, registry.SynonymSep))
	}
	return b.String()
}

// parseSuggestions decodes the model's JSON and drops anything it made up:
// labels that were not asked about and codes absent from the registry.
func parseSuggestions(text string, labels []string, table *registry.Table, limit int) ([]Suggestion, error) {
	var raw []Suggestion
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}

	asked := make(map[string]bool, len(labels))
	for _, label := range labels {
		asked[label] = true
	}

	suggestions := make([]Suggestion, 0, len(raw))
	for _, s := range raw {
		if !asked[s.Label] {
			continue
		}
		kept := make([]string, 0, len(s.Candidates))
		for _, cand := range s.Candidates {
			code := registry.Normalize(cand)
			if _, ok := table.Get(code); !ok {
				continue
			}
			kept = append(kept, code)
			if len(kept) == limit {
				break
			}
		}
		if len(kept) > 0 {
			suggestions = append(suggestions, Suggestion{Label: s.Label, Candidates: kept})
		}
	}
	return suggestions, nil
}

// LogSuggestions writes the ranked suggestions as log events for curators.
func LogSuggestions(ctx context.Context, suggestions []Suggestion) {
	log := logging.Ctx(ctx)
	for _, s := range suggestions {
		log.Info().
			Str("label", s.Label).
			Strs("candidates", s.Candidates).
			Msg("classifier suggestion")
	}
}
