package miniaudio

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/nova/core/audio"
)

// Client records phrases through miniaudio. It is the fallback for hosts
// without PortAudio.
type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	captureClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {}, //log.Println("malgo:", message) },
	)
	if err != nil {
		return nil, fmt.Errorf("malgo InitContext failed: %w", err)
	}

	client := Client{
		audioContext: audioCtx,
	}

	if err := client.captureClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	return &client, nil
}

func (c *Client) Listen(ctx context.Context, maxPhrase time.Duration) (audio.Utterance, error) {
	if err := c.captureClient.Start(); err != nil {
		return audio.Utterance{}, err
	}
	defer func() {
		if err := c.captureClient.Stop(); err != nil {
			log.Printf("Failed to stop capture device: %v", err)
		}
	}()

	log.Println("Listening...")
	return audio.ListenPhrase(ctx, c.EncodingInfo(), maxPhrase, func() ([]byte, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case frame := <-c.frames:
			return frame, nil
		}
	})
}

func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Format:     audio.EncodingLinear16,
	}
}
