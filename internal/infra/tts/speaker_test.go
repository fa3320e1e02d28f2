package tts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSynth struct {
	req   *texttospeechpb.SynthesizeSpeechRequest
	audio []byte
	err   error
}

func (f *fakeSynth) SynthesizeSpeech(_ context.Context, req *texttospeechpb.SynthesizeSpeechRequest, _ ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &texttospeechpb.SynthesizeSpeechResponse{AudioContent: f.audio}, nil
}

func TestSynthesize(t *testing.T) {
	f := &fakeSynth{audio: []byte{0x49, 0x44, 0x33}}
	s := NewWithClient(f, Config{Voice: "en-US-Standard-F"})

	audio, err := s.Synthesize(context.Background(), "  The cat sat  ")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x49, 0x44, 0x33}, audio)
	assert.Equal(t, "The cat sat", f.req.GetInput().GetText())
	assert.Equal(t, "en-US", f.req.GetVoice().GetLanguageCode())
	assert.Equal(t, "en-US-Standard-F", f.req.GetVoice().GetName())
	assert.Equal(t, texttospeechpb.AudioEncoding_MP3, f.req.GetAudioConfig().GetAudioEncoding())
}

func TestSynthesize_Errors(t *testing.T) {
	s := NewWithClient(&fakeSynth{}, Config{})
	_, err := s.Synthesize(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = s.Synthesize(context.Background(), "hello")
	assert.Error(t, err, "empty audio must fail")

	s = NewWithClient(&fakeSynth{err: errors.New("quota")}, Config{})
	_, err = s.Synthesize(context.Background(), "hello")
	assert.Error(t, err)
}

func TestSynthesize_TruncatesLongInput(t *testing.T) {
	f := &fakeSynth{audio: []byte{1}}
	s := NewWithClient(f, Config{})

	_, err := s.Synthesize(context.Background(), strings.Repeat("é", maxInputRunes+50))
	require.NoError(t, err)
	assert.Equal(t, maxInputRunes, utf8.RuneCountInString(f.req.GetInput().GetText()))
}
