// Package tts synthesizes speech with Google Cloud Text-to-Speech.
package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
)

// maxInputRunes keeps requests well below the API's 5000 byte input limit.
const maxInputRunes = 1000

var ErrEmptyText = errors.New("nothing to synthesize")

// Synthesizer is the subset of *texttospeech.Client the speaker uses.
type Synthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
}

type Config struct {
	LanguageCode string
	Voice        string
}

// Speaker turns short texts into MP3 audio.
type Speaker struct {
	client Synthesizer
	cfg    Config
	closer func() error
}

// New creates a Speaker with application default credentials.
func New(ctx context.Context, cfg Config) (*Speaker, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create tts client: %w", err)
	}
	s := NewWithClient(client, cfg)
	s.closer = client.Close
	return s, nil
}

// NewWithClient wraps an existing synthesizer.
func NewWithClient(client Synthesizer, cfg Config) *Speaker {
	if cfg.LanguageCode == "" {
		cfg.LanguageCode = "en-US"
	}
	return &Speaker{client: client, cfg: cfg}
}

// Synthesize returns MP3 bytes for the text.
func (s *Speaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > maxInputRunes {
		text = string([]rune(text)[:maxInputRunes])
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: s.cfg.LanguageCode,
			Name:         s.cfg.Voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := s.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	if len(resp.GetAudioContent()) == 0 {
		return nil, fmt.Errorf("synthesize speech: empty audio")
	}
	return resp.GetAudioContent(), nil
}

// Close releases the underlying connection.
func (s *Speaker) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
