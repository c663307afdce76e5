package audio

import (
	"context"
	"encoding/binary"
	"math"
	"time"
)

const (
	// CalibrationDuration is how much ambient audio is sampled before every
	// phrase to pick the energy threshold.
	CalibrationDuration = time.Second
	// PauseDuration is the length of sub-threshold audio that ends a phrase.
	PauseDuration = 800 * time.Millisecond
	// PreRollDuration is the audio kept from before speech onset so the
	// first syllable is not clipped.
	PreRollDuration = 500 * time.Millisecond

	initialEnergyThreshold = 300
	dynamicEnergyDamping   = 0.15
	dynamicEnergyRatio     = 1.5
)

// PhraseDetector finds one spoken phrase in a stream of linear16 buffers
// using an energy threshold tuned to the ambient noise.
type PhraseDetector struct {
	encoding  EncodingInfo
	maxPhrase time.Duration
	threshold float64

	started  bool
	preRoll  [][]byte
	phrase   []byte
	recorded time.Duration
	silence  time.Duration
}

func NewPhraseDetector(encoding EncodingInfo, maxPhrase time.Duration) *PhraseDetector {
	return &PhraseDetector{
		encoding:  encoding,
		maxPhrase: maxPhrase,
		threshold: initialEnergyThreshold,
	}
}

func (d *PhraseDetector) Threshold() float64 { return d.threshold }

// Calibrate moves the threshold towards the energy of an ambient buffer.
func (d *PhraseDetector) Calibrate(frame []byte) {
	seconds := d.encoding.Duration(len(frame)).Seconds()
	if seconds <= 0 {
		return
	}

	damping := math.Pow(dynamicEnergyDamping, seconds)
	target := Energy(frame) * dynamicEnergyRatio
	d.threshold = d.threshold*damping + target*(1-damping)
}

// Feed consumes the next buffer and reports whether the phrase is complete,
// either because the speaker paused or because the phrase limit was hit.
func (d *PhraseDetector) Feed(frame []byte) bool {
	if len(frame) == 0 {
		return false
	}

	duration := d.encoding.Duration(len(frame))
	loud := Energy(frame) > d.threshold

	if !d.started {
		if !loud {
			d.keepPreRoll(frame)
			return false
		}
		d.started = true
		for _, buffered := range d.preRoll {
			d.phrase = append(d.phrase, buffered...)
		}
		d.preRoll = nil
	}

	d.phrase = append(d.phrase, frame...)
	d.recorded += duration
	if loud {
		d.silence = 0
	} else {
		d.silence += duration
	}

	return d.silence >= PauseDuration || (d.maxPhrase > 0 && d.recorded >= d.maxPhrase)
}

func (d *PhraseDetector) keepPreRoll(frame []byte) {
	buffered := make([]byte, len(frame))
	copy(buffered, frame)
	d.preRoll = append(d.preRoll, buffered)

	total := time.Duration(0)
	for _, b := range d.preRoll {
		total += d.encoding.Duration(len(b))
	}
	for len(d.preRoll) > 1 && total > PreRollDuration {
		total -= d.encoding.Duration(len(d.preRoll[0]))
		d.preRoll = d.preRoll[1:]
	}
}

func (d *PhraseDetector) Utterance() Utterance {
	return Utterance{Audio: d.phrase, EncodingInfo: d.encoding}
}

// Energy is the RMS amplitude of little-endian linear16 samples.
func Energy(frame []byte) float64 {
	samples := len(frame) / 2
	if samples == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < samples; i++ {
		sample := float64(int16(binary.LittleEndian.Uint16(frame[i*2:])))
		sum += sample * sample
	}
	return math.Sqrt(sum / float64(samples))
}

// ListenPhrase calibrates against ambient noise and then records a single
// phrase. read must block until the next buffer of audio is available.
func ListenPhrase(ctx context.Context, encoding EncodingInfo, maxPhrase time.Duration, read func() ([]byte, error)) (Utterance, error) {
	detector := NewPhraseDetector(encoding, maxPhrase)

	for calibrated := time.Duration(0); calibrated < CalibrationDuration; {
		if err := ctx.Err(); err != nil {
			return Utterance{}, err
		}
		frame, err := read()
		if err != nil {
			return Utterance{}, err
		}
		detector.Calibrate(frame)
		calibrated += encoding.Duration(len(frame))
	}

	for {
		if err := ctx.Err(); err != nil {
			return Utterance{}, err
		}
		frame, err := read()
		if err != nil {
			return Utterance{}, err
		}
		if detector.Feed(frame) {
			return detector.Utterance(), nil
		}
	}
}
