// Package texttospeech speaks text aloud. A Backend turns text into an
// encoded clip and a Player makes it audible.
package texttospeech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/koscakluka/nova/core/audio"
)

var ErrInvalidSpeedMultiplier = errors.New("speed multiplier must be greater than zero")

// Backend renders text in the accent for language.
type Backend interface {
	Synthesize(ctx context.Context, text, language string) (audio.Clip, error)
}

// Player plays a clip speed times faster than recorded and returns once it
// has finished.
type Player interface {
	Play(ctx context.Context, clip audio.Clip, speed float64) error
}

type Synthesizer struct {
	backend Backend
	player  Player
}

func NewSynthesizer(backend Backend, player Player) *Synthesizer {
	return &Synthesizer{backend: backend, player: player}
}

// Synthesize speaks text and blocks until playback is over. Blank text is a
// no-op.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string, speed float64) error {
	if speed <= 0 {
		return ErrInvalidSpeedMultiplier
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	clip, err := s.backend.Synthesize(ctx, text, language)
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if len(clip.Data) == 0 {
		return nil
	}

	if err := s.player.Play(ctx, clip, speed); err != nil {
		return fmt.Errorf("failed to play speech: %w", err)
	}
	return nil
}
