package gemini

import (
	"context"

	"google.golang.org/genai"
)

// PuzzleHint returns a short hint for a sentence-reconstruction puzzle.
func (c *Client) PuzzleHint(ctx context.Context, selection, target []string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.4),
	}
	return c.generate(ctx, opHint, genai.Text(hintPrompt(selection, target)), cfg)
}
