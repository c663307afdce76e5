package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/koscakluka/nova/core/events"
	"go.opentelemetry.io/otel/attribute"
)

// SentenceDelimiter separates the sentences of a reply for incremental
// playback.
const SentenceDelimiter = "."

// SplitSentences splits reply on every delimiter. The last element is the
// unfinished tail, empty when reply ends with a delimiter.
func SplitSentences(reply string) []string {
	return strings.Split(reply, SentenceDelimiter)
}

// respond asks the engine for a reply and speaks it one sentence at a time
// while it is still being generated.
//
// Every sentence that has been followed by a delimiter is spoken as soon as
// it shows up. Once the reply is complete the last sentence of the last
// observed reply is spoken, even when it was spoken before, which happens
// when the engine replaces the reply instead of extending it.
func (s *Session) respond(ctx context.Context, prompt string) error {
	if err := s.transition(EventWoken); err != nil {
		return err
	}
	activations.Add(ctx, 1)

	ctx, span := tracer.Start(ctx, "respond")
	defer span.End()
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	counter := 1
	var sentences []string
	reply := ""
	for fragment, err := range s.engine.Ask(ctx, prompt) {
		if err != nil {
			return fmt.Errorf("failed to generate reply: %w", err)
		}
		reply = fragment
		s.emit(events.NewAssistantResponseUpdated(fragment))

		sentences = SplitSentences(fragment)
		for len(sentences) > counter {
			if err := s.speak(ctx, sentences[counter-1]); err != nil {
				return err
			}
			counter++
		}
	}

	if len(sentences) > 0 {
		s.emit(events.NewAssistantResponseFinal(reply))
		if err := s.speak(ctx, sentences[len(sentences)-1]); err != nil {
			return err
		}
	}
	span.SetAttributes(attribute.Int("reply.sentences", len(sentences)))

	return s.transition(EventResponded)
}

func (s *Session) speak(ctx context.Context, sentence string) error {
	ctx, span := tracer.Start(ctx, "speak sentence")
	defer span.End()

	if err := s.synthesizer.Synthesize(ctx, sentence, s.params.Language, s.params.SpeedMultiplier); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to speak reply: %w", err)
	}

	if strings.TrimSpace(sentence) != "" {
		sentencesSpoken.Add(ctx, 1)
		s.emit(events.NewAssistantSpeechSentence(sentence))
	}
	return nil
}
