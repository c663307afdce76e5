package texttospeech

import (
	"context"
	"errors"
	"testing"

	"github.com/koscakluka/nova/core/audio"
)

type backendStub struct {
	texts     []string
	languages []string
	clip      audio.Clip
	err       error
}

func (b *backendStub) Synthesize(_ context.Context, text, language string) (audio.Clip, error) {
	b.texts = append(b.texts, text)
	b.languages = append(b.languages, language)
	return b.clip, b.err
}

type playerStub struct {
	clips  []audio.Clip
	speeds []float64
	err    error
}

func (p *playerStub) Play(_ context.Context, clip audio.Clip, speed float64) error {
	p.clips = append(p.clips, clip)
	p.speeds = append(p.speeds, speed)
	return p.err
}

func TestSynthesizePlaysClipAtSpeed(t *testing.T) {
	backend := &backendStub{clip: audio.Clip{Data: []byte{1}, Container: audio.ContainerMP3}}
	player := &playerStub{}

	if err := NewSynthesizer(backend, player).Synthesize(context.Background(), "Hello there", "es", 1.25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(backend.texts) != 1 || backend.texts[0] != "Hello there" || backend.languages[0] != "es" {
		t.Fatalf("unexpected backend calls: %v %v", backend.texts, backend.languages)
	}
	if len(player.speeds) != 1 || player.speeds[0] != 1.25 {
		t.Fatalf("expected one playback at 1.25x, got %v", player.speeds)
	}
}

func TestSynthesizeSkipsBlankText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		backend := &backendStub{}
		player := &playerStub{}

		if err := NewSynthesizer(backend, player).Synthesize(context.Background(), text, "en", 1); err != nil {
			t.Fatalf("expected blank text to be a no-op, got %v", err)
		}
		if len(backend.texts) != 0 || len(player.clips) != 0 {
			t.Fatalf("expected no backend or player calls for %q", text)
		}
	}
}

func TestSynthesizeRejectsNonPositiveSpeed(t *testing.T) {
	backend := &backendStub{}
	for _, speed := range []float64{0, -0.5} {
		err := NewSynthesizer(backend, &playerStub{}).Synthesize(context.Background(), "hi", "en", speed)
		if !errors.Is(err, ErrInvalidSpeedMultiplier) {
			t.Fatalf("expected ErrInvalidSpeedMultiplier for %v, got %v", speed, err)
		}
	}
	if len(backend.texts) != 0 {
		t.Fatalf("backend should not be called with invalid speed")
	}
}

func TestSynthesizePropagatesErrors(t *testing.T) {
	backendErr := errors.New("backend down")
	err := NewSynthesizer(&backendStub{err: backendErr}, &playerStub{}).Synthesize(context.Background(), "hi", "en", 1)
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}

	playerErr := errors.New("no device")
	err = NewSynthesizer(
		&backendStub{clip: audio.Clip{Data: []byte{1}, Container: audio.ContainerWAV}},
		&playerStub{err: playerErr},
	).Synthesize(context.Background(), "hi", "en", 1)
	if !errors.Is(err, playerErr) {
		t.Fatalf("expected player error, got %v", err)
	}
}
