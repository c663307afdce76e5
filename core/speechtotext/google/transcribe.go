package google

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/koscakluka/nova/core/audio"
	"github.com/koscakluka/nova/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/option"
)

type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// TranscriptionClient sends each utterance to Google Cloud Speech-to-Text
// as a single synchronous recognition request.
type TranscriptionClient struct {
	client recognizer
}

// NewTranscriptionClient dials the Speech API. Credentials come from opts or,
// when none are given, from GOOGLE_APPLICATION_CREDENTIALS.
func NewTranscriptionClient(ctx context.Context, opts ...option.ClientOption) (*TranscriptionClient, error) {
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &TranscriptionClient{client: client}, nil
}

// Locale maps the session language onto a Speech-to-Text language code.
func Locale(language string) string {
	switch language {
	case "es":
		return "es-ES"
	default:
		return "en-US"
	}
}

func (c *TranscriptionClient) Transcribe(ctx context.Context, utterance audio.Utterance, language string) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe utterance")
	defer span.End()

	locale := Locale(language)
	span.SetAttributes(
		attribute.String("speechtotext.locale", locale),
		attribute.Int("speechtotext.audio_bytes", len(utterance.Audio)),
	)

	encoding := utterance.EncodingInfo
	if encoding.IsZero() {
		encoding = audio.GetDefaultEncodingInfo()
	}
	recognitionEncoding, err := convertEncoding(encoding)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid encoding")
		return "", fmt.Errorf("invalid encoding: %w", err)
	}

	resp, err := c.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        recognitionEncoding,
			SampleRateHertz: int32(encoding.SampleRate),
			LanguageCode:    locale,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: utterance.Audio},
		},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recognition request failed")
		return "", fmt.Errorf("recognition request failed: %w", err)
	}

	var parts []string
	for _, result := range resp.GetResults() {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		if transcript := strings.TrimSpace(alternatives[0].GetTranscript()); transcript != "" {
			parts = append(parts, transcript)
		}
	}
	if len(parts) == 0 {
		logger.DebugContext(ctx, "no transcript in recognition response", "locale", locale)
		return "", speechtotext.ErrUnrecognized
	}

	return strings.Join(parts, " "), nil
}

func (c *TranscriptionClient) Close() error {
	return c.client.Close()
}

func convertEncoding(encoding audio.EncodingInfo) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding.Format {
	case audio.EncodingLinear16:
		return speechpb.RecognitionConfig_LINEAR16, nil
	case audio.EncodingMulaw:
		return speechpb.RecognitionConfig_MULAW, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding %q", encoding.Format.Name())
	}
}
