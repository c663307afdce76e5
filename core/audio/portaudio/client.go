package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/nova/core/audio"
)

// DefaultFramesPerBuffer is ~100ms of audio at the default sample rate.
const DefaultFramesPerBuffer = audio.DefaultSampleRate / 10

// Client records phrases from the default input device.
type Client struct {
	framesPerBuffer int
	stream          *portaudio.Stream
	in              []int16

	mu sync.Mutex
}

func NewClient(framesPerBuffer int) (*Client, error) {
	if framesPerBuffer <= 0 {
		framesPerBuffer = DefaultFramesPerBuffer
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	in := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, framesPerBuffer, in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open PortAudio stream: %w", err)
	}

	return &Client{
		framesPerBuffer: framesPerBuffer,
		stream:          stream,
		in:              in,
	}, nil
}

// Listen waits for the user to say something and returns it once they
// pause or maxPhrase elapses.
func (c *Client) Listen(ctx context.Context, maxPhrase time.Duration) (audio.Utterance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.stream.Start(); err != nil {
		return audio.Utterance{}, fmt.Errorf("failed to start PortAudio stream: %w", err)
	}
	defer func() {
		if err := c.stream.Stop(); err != nil {
			log.Printf("Failed to stop PortAudio stream: %v", err)
		}
	}()

	log.Println("Listening...")
	return audio.ListenPhrase(ctx, c.EncodingInfo(), maxPhrase, c.read)
}

func (c *Client) read() ([]byte, error) {
	if err := c.stream.Read(); err != nil {
		// An overflow drops samples but leaves the stream readable.
		if err != portaudio.InputOverflowed {
			return nil, fmt.Errorf("failed to read from PortAudio stream: %w", err)
		}
	}

	buffer := bytes.Buffer{}
	if err := binary.Write(&buffer, binary.LittleEndian, c.in); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stream.Close()
	portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Format:     audio.EncodingLinear16,
	}
}
