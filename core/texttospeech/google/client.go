package google

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/koscakluka/nova/core/audio"
	"google.golang.org/api/option"
)

type synthesizer interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

// TextToSpeechClient renders text to MP3 with Google Cloud Text-to-Speech.
type TextToSpeechClient struct {
	client synthesizer
}

func NewTextToSpeechClient(ctx context.Context, opts ...option.ClientOption) (*TextToSpeechClient, error) {
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &TextToSpeechClient{client: client}, nil
}

// Accent picks the voice locale for language. English is spoken with an
// Australian accent.
func Accent(language string) string {
	switch language {
	case "es":
		return "es-ES"
	default:
		return "en-AU"
	}
}

func (c *TextToSpeechClient) Synthesize(ctx context.Context, text, language string) (audio.Clip, error) {
	resp, err := c.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: Accent(language),
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return audio.Clip{}, fmt.Errorf("text-to-speech error: %w", err)
	}

	return audio.Clip{Data: resp.GetAudioContent(), Container: audio.ContainerMP3}, nil
}

func (c *TextToSpeechClient) Close() error {
	return c.client.Close()
}
