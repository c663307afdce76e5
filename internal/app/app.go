// Package app builds the concrete voice pipeline selected by configuration
// and runs one assistant session on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	assistant "github.com/koscakluka/nova/core"
	"github.com/koscakluka/nova/core/audio/miniaudio"
	"github.com/koscakluka/nova/core/audio/playback"
	"github.com/koscakluka/nova/core/audio/portaudio"
	"github.com/koscakluka/nova/core/credentials"
	"github.com/koscakluka/nova/core/llms/groq"
	"github.com/koscakluka/nova/core/llms/openai"
	"github.com/koscakluka/nova/core/speechtotext/deepgram"
	"github.com/koscakluka/nova/core/speechtotext/google"
	"github.com/koscakluka/nova/core/texttospeech"
	deepgramtts "github.com/koscakluka/nova/core/texttospeech/deepgram"
	googletts "github.com/koscakluka/nova/core/texttospeech/google"
	"github.com/koscakluka/nova/internal/config"
)

// Run greets the user, talks until a stop phrase is heard and releases
// every device and client before returning. opts are applied after the
// components built from cfg, so they can replace any of them.
func Run(ctx context.Context, cfg config.Config, params assistant.Params, creds credentials.Credentials, opts ...assistant.Option) error {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if closeErr := closers[i](); closeErr != nil {
				log.Printf("Failed to release resources: %v", closeErr)
			}
		}
	}()

	capture, closeCapture, err := newAudioCapture(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, closeCapture)

	transcriber, closeTranscriber, err := newTranscriber(ctx, cfg)
	if err != nil {
		return err
	}
	closers = append(closers, closeTranscriber)

	synthesizer, closeSynthesizer, err := newSynthesizer(ctx, cfg)
	if err != nil {
		return err
	}
	closers = append(closers, closeSynthesizer)

	engine, err := NewConversationEngine(cfg, creds)
	if err != nil {
		return err
	}

	session, err := assistant.New(params, append([]assistant.Option{
		assistant.WithAudioCapture(capture),
		assistant.WithTranscriber(transcriber),
		assistant.WithSynthesizer(synthesizer),
		assistant.WithConversationEngine(engine),
		assistant.WithMaxPhraseDuration(cfg.MaxPhrase),
	}, opts...)...)
	if err != nil {
		return err
	}

	return session.Run(ctx)
}

func newAudioCapture(cfg config.Config) (assistant.AudioCapture, func() error, error) {
	switch cfg.AudioBackend {
	case config.AudioBackendMiniaudio:
		client, err := miniaudio.NewClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open microphone: %w", err)
		}
		return client, func() error { client.Close(); return nil }, nil
	case config.AudioBackendPortAudio:
		client, err := portaudio.NewClient(portaudio.DefaultFramesPerBuffer)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open microphone: %w", err)
		}
		return client, func() error { client.Close(); return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown audio backend %q", cfg.AudioBackend)
}

func newTranscriber(ctx context.Context, cfg config.Config) (assistant.Transcriber, func() error, error) {
	switch cfg.STTProvider {
	case config.ProviderDeepgram:
		client, err := deepgram.NewTranscriptionClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create transcriber: %w", err)
		}
		return client, func() error { return nil }, nil
	case config.ProviderGoogle:
		client, err := google.NewTranscriptionClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create transcriber: %w", err)
		}
		return client, client.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown speech-to-text provider %q", cfg.STTProvider)
}

func newSynthesizer(ctx context.Context, cfg config.Config) (assistant.Synthesizer, func() error, error) {
	var (
		backend      texttospeech.Backend
		closeBackend = func() error { return nil }
	)
	switch cfg.TTSProvider {
	case config.ProviderDeepgram:
		client, err := deepgramtts.NewTextToSpeechClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create synthesizer: %w", err)
		}
		backend = client
	case config.ProviderGoogle:
		client, err := googletts.NewTextToSpeechClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create synthesizer: %w", err)
		}
		backend, closeBackend = client, client.Close
	default:
		return nil, nil, fmt.Errorf("unknown text-to-speech provider %q", cfg.TTSProvider)
	}

	player := playback.NewPlayer()
	return texttospeech.NewSynthesizer(backend, player), func() error {
		player.Close()
		return closeBackend()
	}, nil
}

// NewConversationEngine returns the language model client for cfg, keyed
// with the access token from creds.
func NewConversationEngine(cfg config.Config, creds credentials.Credentials) (assistant.ConversationEngine, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	switch cfg.LLMProvider {
	case config.LLMProviderGroq:
		opts := []groq.ClientOption{groq.WithConversationTitle(assistant.DefaultConversationTitle)}
		if cfg.LLMModel != "" {
			opts = append(opts, groq.WithModel(cfg.LLMModel))
		}
		client, err := groq.NewClient(creds.AccessToken, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.LLMProviderOpenAI:
		opts := []openai.ClientOption{openai.WithConversationTitle(assistant.DefaultConversationTitle)}
		if cfg.LLMModel != "" {
			opts = append(opts, openai.WithModel(cfg.LLMModel))
		}
		client, err := openai.NewClient(creds.AccessToken, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, errors.New("unknown language model provider " + cfg.LLMProvider)
}
