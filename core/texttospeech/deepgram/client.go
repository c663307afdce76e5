package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/koscakluka/nova/core/audio"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultSpeakURL = "https://api.deepgram.com/v1/speak"

type deepgramVoice string

const (
	VoiceThaliaEn  deepgramVoice = "aura-2-thalia-en"
	VoiceCelesteEs deepgramVoice = "aura-2-celeste-es"
)

// Voice picks the Aura model for language.
func Voice(language string) deepgramVoice {
	switch language {
	case "es":
		return VoiceCelesteEs
	default:
		return VoiceThaliaEn
	}
}

// TextToSpeechClient renders text to WAV with the Deepgram speak REST API.
type TextToSpeechClient struct {
	apiKey     string
	speakURL   string
	httpClient *http.Client
}

type TextToSpeechOption func(*TextToSpeechClient)

func WithAPIKey(apiKey string) TextToSpeechOption {
	return func(c *TextToSpeechClient) { c.apiKey = apiKey }
}

func WithSpeakURL(speakURL string) TextToSpeechOption {
	return func(c *TextToSpeechClient) { c.speakURL = speakURL }
}

func WithHTTPClient(httpClient *http.Client) TextToSpeechOption {
	return func(c *TextToSpeechClient) { c.httpClient = httpClient }
}

func NewTextToSpeechClient(opts ...TextToSpeechOption) (*TextToSpeechClient, error) {
	client := &TextToSpeechClient{
		apiKey:     os.Getenv("DEEPGRAM_API_KEY"),
		speakURL:   defaultSpeakURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}
	return client, nil
}

func (c *TextToSpeechClient) Synthesize(ctx context.Context, text, language string) (audio.Clip, error) {
	speakUrl, err := url.Parse(c.speakURL)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("invalid speak url: %w", err)
	}
	queryParams := speakUrl.Query()
	queryParams.Set("model", string(Voice(language)))
	queryParams.Set("encoding", "linear16")
	queryParams.Set("container", "wav")
	speakUrl.RawQuery = queryParams.Encode()

	body, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return audio.Clip{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, speakUrl.String(), bytes.NewReader(body))
	if err != nil {
		return audio.Clip{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("deepgram speak request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to read deepgram speak response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return audio.Clip{}, fmt.Errorf("deepgram speak returned %s: %s", resp.Status, bytes.TrimSpace(data))
	}

	return audio.Clip{Data: data, Container: audio.ContainerWAV}, nil
}
