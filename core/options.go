package assistant

import (
	"context"
	"iter"
	"time"

	"github.com/koscakluka/nova/core/audio"
	"github.com/koscakluka/nova/core/events"
)

// DefaultMaxPhraseDuration bounds a single captured utterance.
const DefaultMaxPhraseDuration = 10 * time.Second

type Option func(*Session)

// AudioCapture records one utterance per call, calibrating for ambient noise
// first.
type AudioCapture interface {
	Listen(ctx context.Context, maxPhrase time.Duration) (audio.Utterance, error)
}

func WithAudioCapture(capture AudioCapture) Option {
	return func(s *Session) { s.capture = capture }
}

// Transcriber turns an utterance into text. Errors are reported to the
// session, which treats them as silence.
type Transcriber interface {
	Transcribe(ctx context.Context, utterance audio.Utterance, language string) (string, error)
}

func WithTranscriber(transcriber Transcriber) Option {
	return func(s *Session) { s.transcriber = transcriber }
}

// Synthesizer speaks text and returns once playback has finished.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string, speed float64) error
}

func WithSynthesizer(synthesizer Synthesizer) Option {
	return func(s *Session) { s.synthesizer = synthesizer }
}

// ConversationEngine generates replies within one conversation.
//
// Ask yields the reply text observed so far, each value replacing the
// previous one. The sequence ends after the last value or after the first
// error.
type ConversationEngine interface {
	Ask(ctx context.Context, prompt string) iter.Seq2[string, error]
	ConversationID() string
	Close(ctx context.Context) error
}

func WithConversationEngine(engine ConversationEngine) Option {
	return func(s *Session) { s.engine = engine }
}

// WithEventHandler receives every event the session emits. It is called
// synchronously from the session loop.
func WithEventHandler(handler func(events.Event)) Option {
	return func(s *Session) { s.onEvent = handler }
}

func WithMaxPhraseDuration(duration time.Duration) Option {
	return func(s *Session) {
		if duration > 0 {
			s.maxPhrase = duration
		}
	}
}

func WithVocabulary(vocabulary Vocabulary) Option {
	return func(s *Session) { s.vocabulary = vocabulary }
}
