package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

var requiredLessonPaths = []string{
	"theme",
	"vocabulary",
	"concept.title",
	"simulation.openingLine",
	"simulation.objective",
	"story.content",
	"challenge.task",
}

// GenerateLesson asks the model for a complete lesson and validates it.
func (c *Client) GenerateLesson(ctx context.Context, req entities.GenerationRequest) (*entities.LessonContent, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(lessonSystem, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    lessonSchema,
		Temperature:       genai.Ptr[float32](0.9),
	}

	text, err := c.generate(ctx, opLesson, genai.Text(lessonPrompt(req)), cfg)
	if err != nil {
		return nil, err
	}

	content, err := decodeLesson(text)
	if err != nil {
		c.logger.Debug("rejected lesson payload", zap.String("payload", truncate(text, 512)), zap.Error(err))
		return nil, err
	}
	return content, nil
}

// decodeLesson validates the raw model output against the lesson shape.
func decodeLesson(text string) (*entities.LessonContent, error) {
	raw := stripFences(text)
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("%w: not json", ErrMalformedResponse)
	}

	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: want object, got %s", ErrMalformedResponse, doc.Type)
	}
	for _, path := range requiredLessonPaths {
		if !doc.Get(path).Exists() {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedResponse, path)
		}
	}
	if !doc.Get("vocabulary").IsArray() {
		return nil, fmt.Errorf("%w: vocabulary is not a list", ErrMalformedResponse)
	}

	var content entities.LessonContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := content.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &content, nil
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
