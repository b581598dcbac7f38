package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// GenkitModelName is the name the OpenRouter model is registered under.
const GenkitModelName = "openrouter/companion"

// GenkitBackend routes completions through a Genkit model backed by the
// OpenRouter client.
type GenkitBackend struct {
	g     *genkit.Genkit
	model ai.Model
}

// NewGenkitBackend registers the OpenRouter client as a Genkit model.
func NewGenkitBackend(ctx context.Context, client *Client) (*GenkitBackend, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}

	g := genkit.Init(ctx)

	model := genkit.DefineModel(
		g,
		GenkitModelName,
		&ai.ModelOptions{
			Label: fmt.Sprintf("%s (via OpenRouter)", client.Model()),
			Supports: &ai.ModelSupports{
				Multiturn:  true,
				SystemRole: true,
			},
		},
		func(ctx context.Context, req *ai.ModelRequest, cb ai.ModelStreamCallback) (*ai.ModelResponse, error) {
			system, user := splitPrompts(req.Messages)
			text, err := client.Complete(ctx, system, user)
			if err != nil {
				return nil, err
			}
			return &ai.ModelResponse{
				Request: req,
				Message: &ai.Message{
					Role:    ai.RoleModel,
					Content: []*ai.Part{ai.NewTextPart(text)},
				},
			}, nil
		},
	)
	if model == nil {
		return nil, fmt.Errorf("register genkit model %s", GenkitModelName)
	}

	return &GenkitBackend{g: g, model: model}, nil
}

// Complete generates a completion through the registered Genkit model.
func (b *GenkitBackend) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := b.model.Generate(ctx, &ai.ModelRequest{
		Messages: []*ai.Message{
			{Role: ai.RoleSystem, Content: []*ai.Part{ai.NewTextPart(systemPrompt)}},
			{Role: ai.RoleUser, Content: []*ai.Part{ai.NewTextPart(userPrompt)}},
		},
	}, nil)
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Message == nil {
		return "", NewMalformedError("genkit returned no message", nil)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", NewMalformedError("empty content", nil)
	}
	return text, nil
}

// Lookup returns the registered model from the Genkit registry.
func (b *GenkitBackend) Lookup() ai.Model {
	return genkit.LookupModel(b.g, GenkitModelName)
}

// splitPrompts concatenates the text of system and user messages.
func splitPrompts(messages []*ai.Message) (system, user string) {
	var sys, usr []string
	for _, m := range messages {
		if m == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range m.Content {
			if p != nil && p.IsText() {
				sb.WriteString(p.Text)
			}
		}
		switch m.Role {
		case ai.RoleSystem:
			sys = append(sys, sb.String())
		case ai.RoleUser:
			usr = append(usr, sb.String())
		}
	}
	return strings.Join(sys, "\n\n"), strings.Join(usr, "\n\n")
}
