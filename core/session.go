// Package assistant runs a spoken conversation with a language model. The
// assistant only answers utterances that start with a wake phrase such as
// "hello nova" and the session ends on a stop phrase such as "bye nova".
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/koscakluka/nova/core/events"
	"github.com/koscakluka/nova/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrInvalidSpeedMultiplier = errors.New("speed multiplier must be greater than zero")
	ErrEmptyAssistantName     = errors.New("assistant name must not be empty")
	ErrMissingComponent       = errors.New("session is missing a component")
	ErrSessionFinished        = errors.New("session has already run")
)

// Params are the user-facing settings of a session.
type Params struct {
	// AssistantName is both the display name and, lower-cased, the word that
	// has to follow a wake or stop word.
	AssistantName   string
	Language        string
	SpeedMultiplier float64
}

type Session struct {
	params Params
	// name is the lower-cased assistant name used for phrase matching
	name string

	capture     AudioCapture
	transcriber Transcriber
	synthesizer Synthesizer
	engine      ConversationEngine

	vocabulary Vocabulary
	maxPhrase  time.Duration
	onEvent    func(events.Event)

	conversationID string
	state          State
	mu             sync.Mutex
}

func New(params Params, opts ...Option) (*Session, error) {
	if params.SpeedMultiplier <= 0 {
		return nil, ErrInvalidSpeedMultiplier
	}
	params.AssistantName = strings.TrimSpace(params.AssistantName)
	if params.AssistantName == "" {
		return nil, ErrEmptyAssistantName
	}
	if params.Language == "" {
		params.Language = "en"
	}

	s := &Session{
		params:     params,
		name:       strings.ToLower(params.AssistantName),
		vocabulary: DefaultVocabulary(),
		maxPhrase:  DefaultMaxPhraseDuration,
		state:      StateGreeting,
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case s.capture == nil:
		return nil, fmt.Errorf("%w: audio capture", ErrMissingComponent)
	case s.transcriber == nil:
		return nil, fmt.Errorf("%w: transcriber", ErrMissingComponent)
	case s.synthesizer == nil:
		return nil, fmt.Errorf("%w: synthesizer", ErrMissingComponent)
	case s.engine == nil:
		return nil, fmt.Errorf("%w: conversation engine", ErrMissingComponent)
	}

	return s, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ConversationID is empty until the greeting has been generated.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Run greets the user and then listens until a stop phrase is heard. It
// returns nil after a stop phrase, the component error if generation,
// synthesis or capture fails, and ctx.Err() if ctx is cancelled. A session
// can only be run once.
func (s *Session) Run(ctx context.Context) (err error) {
	if s.State() != StateGreeting {
		return ErrSessionFinished
	}

	ctx, span := tracer.Start(ctx, "assistant session")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.assistant_name", s.params.AssistantName),
		attribute.String("session.language", s.params.Language),
		attribute.Float64("session.speed_multiplier", s.params.SpeedMultiplier),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			_ = s.transition(EventFailed)
		}
	}()

	if err := s.greet(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		transcript, err := s.listen(ctx)
		if err != nil {
			return err
		}
		if transcript == "" {
			continue
		}

		switch {
		case s.vocabulary.MatchesStop(transcript, s.name):
			return s.terminate(ctx)
		case s.vocabulary.MatchesWake(transcript, s.name):
			if err := s.respond(ctx, s.vocabulary.StripWake(transcript, s.name)); err != nil {
				return err
			}
		default:
			if err := s.ignore(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) greet(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "greet")
	defer span.End()

	greeting := ""
	for reply, err := range s.engine.Ask(ctx, SystemMessage(s.params.AssistantName, s.params.Language)) {
		if err != nil {
			return fmt.Errorf("failed to generate greeting: %w", err)
		}
		greeting = reply
	}

	if err := s.synthesizer.Synthesize(ctx, greeting, s.params.Language, s.params.SpeedMultiplier); err != nil {
		return fmt.Errorf("failed to speak greeting: %w", err)
	}

	conversationID := s.engine.ConversationID()
	s.mu.Lock()
	s.conversationID = conversationID
	s.mu.Unlock()
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	log.Printf("Initializing %s - Conversation Id %s", s.params.AssistantName, conversationID)
	s.emit(events.NewConversationStarted(conversationID, greeting))
	return s.transition(EventGreeted)
}

// listen captures one utterance and returns its lower-cased transcript.
// Recognition failures are logged and come back as an empty transcript.
func (s *Session) listen(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "listen")
	defer span.End()

	utterance, err := s.capture.Listen(ctx, s.maxPhrase)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("failed to capture audio: %w", err)
	}
	utterancesCaptured.Add(ctx, 1)

	transcript, err := s.transcriber.Transcribe(ctx, utterance, s.params.Language)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, speechtotext.ErrUnrecognized) {
			log.Println("Could not understand audio")
		} else {
			log.Printf("Could not request results from speech recognition service; %v", err)
			logger.WarnContext(ctx, "transcription failed", "error", err)
		}
		emptyTranscripts.Add(ctx, 1)
		s.emit(events.NewUserTranscriptUnrecognized(err))
		return "", nil
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		emptyTranscripts.Add(ctx, 1)
		return "", nil
	}

	log.Printf("Transcription: %s", transcript)
	s.emit(events.NewUserTranscriptFinal(transcript))
	return strings.ToLower(transcript), nil
}

func (s *Session) ignore() error {
	if err := s.transition(EventIgnored); err != nil {
		return err
	}
	return s.transition(EventResumed)
}

func (s *Session) terminate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "close conversation")
	defer span.End()

	conversationID := s.engine.ConversationID()
	if err := s.engine.Close(ctx); err != nil {
		return fmt.Errorf("failed to close conversation: %w", err)
	}
	s.emit(events.NewConversationClosed(conversationID))
	return s.transition(EventStopped)
}

func (s *Session) transition(event Event) error {
	s.mu.Lock()
	from := s.state
	to, err := Transition(from, event)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = to
	s.mu.Unlock()

	s.emit(events.NewSessionStateChanged(string(from), string(to)))
	return nil
}

func (s *Session) emit(event events.Event) {
	if s.onEvent != nil {
		s.onEvent(event)
	}
}
