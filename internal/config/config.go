package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	LLMProviderOpenAI = "openai"
	LLMProviderGroq   = "groq"

	ProviderGoogle   = "google"
	ProviderDeepgram = "deepgram"

	AudioBackendPortAudio = "portaudio"
	AudioBackendMiniaudio = "miniaudio"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress     string
	LLMProvider     string
	LLMModel        string
	STTProvider     string
	TTSProvider     string
	AudioBackend    string
	CredentialsFile string
	MaxPhrase       time.Duration
}

// Load reads .env and the environment and returns Config with defaults
// applied. Unknown provider names are an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}

	cfg := Config{
		HTTPAddress:     getenv("HTTP_ADDRESS", ":5000"),
		LLMProvider:     getenv("NOVA_LLM_PROVIDER", LLMProviderOpenAI),
		LLMModel:        os.Getenv("NOVA_LLM_MODEL"),
		STTProvider:     getenv("NOVA_STT_PROVIDER", ProviderGoogle),
		TTSProvider:     getenv("NOVA_TTS_PROVIDER", ProviderGoogle),
		AudioBackend:    getenv("NOVA_AUDIO_BACKEND", AudioBackendPortAudio),
		CredentialsFile: getenv("NOVA_CREDENTIALS_FILE", "credentials.json"),
		MaxPhrase:       10 * time.Second,
	}

	if raw := os.Getenv("NOVA_MAX_PHRASE_SECONDS"); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid NOVA_MAX_PHRASE_SECONDS %q", raw)
		}
		cfg.MaxPhrase = time.Duration(seconds * float64(time.Second))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case LLMProviderOpenAI, LLMProviderGroq:
	default:
		return fmt.Errorf("unknown NOVA_LLM_PROVIDER %q", c.LLMProvider)
	}
	switch c.STTProvider {
	case ProviderGoogle, ProviderDeepgram:
	default:
		return fmt.Errorf("unknown NOVA_STT_PROVIDER %q", c.STTProvider)
	}
	switch c.TTSProvider {
	case ProviderGoogle, ProviderDeepgram:
	default:
		return fmt.Errorf("unknown NOVA_TTS_PROVIDER %q", c.TTSProvider)
	}
	switch c.AudioBackend {
	case AudioBackendPortAudio, AudioBackendMiniaudio:
	default:
		return fmt.Errorf("unknown NOVA_AUDIO_BACKEND %q", c.AudioBackend)
	}
	return nil
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
