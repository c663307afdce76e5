package audio

import "time"

// Utterance is one bounded recording of the user speaking. It lives only
// long enough to be handed to a transcriber.
type Utterance struct {
	Audio        []byte
	EncodingInfo EncodingInfo
}

func (u Utterance) IsEmpty() bool { return len(u.Audio) == 0 }

func (u Utterance) Duration() time.Duration {
	return u.EncodingInfo.Duration(len(u.Audio))
}

// Container identifies how a synthesized clip is packaged.
type Container string

const (
	ContainerMP3 Container = "mp3"
	ContainerWAV Container = "wav"
)

// Clip is encoded speech returned by a text-to-speech backend, ready to be
// decoded and played.
type Clip struct {
	Data      []byte
	Container Container
}
