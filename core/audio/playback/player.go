package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/koscakluka/nova/core/audio"
)

const (
	// SpeakerSampleRate is the rate the speaker is opened at. Every clip is
	// resampled to it.
	SpeakerSampleRate beep.SampleRate = 44100

	resampleQuality = 4
)

var ErrInvalidSpeed = errors.New("playback speed must be positive")

// Player plays synthesized clips on the default output device, one at a
// time.
type Player struct {
	initOnce sync.Once
	initErr  error

	mu sync.Mutex
}

func NewPlayer() *Player {
	return &Player{}
}

func (p *Player) init() error {
	p.initOnce.Do(func() {
		if err := speaker.Init(SpeakerSampleRate, SpeakerSampleRate.N(time.Second/10)); err != nil {
			p.initErr = fmt.Errorf("failed to initialize speaker: %w", err)
		}
	})
	return p.initErr
}

// Play decodes the clip, speeds it up by speed and blocks until it has been
// heard or ctx is cancelled.
func (p *Player) Play(ctx context.Context, clip audio.Clip, speed float64) error {
	if speed <= 0 {
		return ErrInvalidSpeed
	}

	streamer, format, err := Decode(clip)
	if err != nil {
		return err
	}
	defer streamer.Close()

	if err := p.init(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	done := make(chan struct{})
	resampled := beep.ResampleRatio(resampleQuality, Ratio(format.SampleRate, SpeakerSampleRate, speed), streamer)
	speaker.Play(beep.Seq(resampled, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

func (p *Player) Close() {
	speaker.Clear()
}

// Decode opens an encoded clip as a beep streamer.
func Decode(clip audio.Clip) (beep.StreamSeekCloser, beep.Format, error) {
	switch clip.Container {
	case audio.ContainerMP3:
		streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(clip.Data)))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("failed to decode mp3: %w", err)
		}
		return streamer, format, nil
	case audio.ContainerWAV:
		streamer, format, err := wav.Decode(bytes.NewReader(clip.Data))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("failed to decode wav: %w", err)
		}
		return streamer, format, nil
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported container %q", clip.Container)
	}
}

// Ratio is the resampling ratio that converts from the clip rate to the
// speaker rate while playing speed times faster. Pitch rises with speed.
func Ratio(from, to beep.SampleRate, speed float64) float64 {
	return float64(from) / float64(to) * speed
}
