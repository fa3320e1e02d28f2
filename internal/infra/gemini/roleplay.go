package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

// conversationStart opens the contents when the persona speaks first.
const conversationStart = "(The conversation begins.)"

// RoleplayReply returns the persona's next line for the transcript.
func (c *Client) RoleplayReply(ctx context.Context, scenario entities.SimulationScenario, transcript []entities.Turn) (string, error) {
	if len(transcript) == 0 {
		return "", fmt.Errorf("%s: empty transcript", opRoleplay)
	}

	contents := make([]*genai.Content, 0, len(transcript)+1)
	if transcript[0].Role == entities.RoleModel {
		contents = append(contents, genai.NewContentFromText(conversationStart, genai.RoleUser))
	}
	for _, t := range transcript {
		role := genai.Role(genai.RoleUser)
		if t.Role == entities.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(roleplaySystem(scenario), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.8),
	}

	return c.generate(ctx, opRoleplay, contents, cfg)
}

// EvaluateRoleplay scores the transcript against the scenario objective.
func (c *Client) EvaluateRoleplay(ctx context.Context, scenario entities.SimulationScenario, transcript []entities.Turn) (*entities.PerformanceFeedback, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   feedbackSchema,
		Temperature:      genai.Ptr[float32](0.2),
	}

	text, err := c.generate(ctx, opEvaluate, genai.Text(evaluationPrompt(scenario, transcript)), cfg)
	if err != nil {
		return nil, err
	}
	return decodeFeedback(text)
}

func decodeFeedback(text string) (*entities.PerformanceFeedback, error) {
	raw := stripFences(text)
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: not json", ErrMalformedResponse)
	}
	if score := gjson.Get(raw, "score"); score.Type != gjson.Number {
		return nil, fmt.Errorf("%w: score is not a number", ErrMalformedResponse)
	}

	var f entities.PerformanceFeedback
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &f, nil
}
