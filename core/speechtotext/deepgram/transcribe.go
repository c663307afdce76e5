package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/nova/core/audio"
	"github.com/koscakluka/nova/core/speechtotext"
)

const (
	defaultListenURL = "wss://api.deepgram.com/v1/listen"
	defaultModel     = "nova-3"

	chunkDuration = 100 * time.Millisecond
)

// TranscriptionClient streams each utterance over a fresh Deepgram live
// transcription socket and collects the final results.
type TranscriptionClient struct {
	apiKey    string
	listenURL string
	model     string
	dialer    *websocket.Dialer
}

type TranscriptionOption func(*TranscriptionClient)

func WithAPIKey(apiKey string) TranscriptionOption {
	return func(c *TranscriptionClient) {
		c.apiKey = apiKey
	}
}

func WithListenURL(listenURL string) TranscriptionOption {
	return func(c *TranscriptionClient) {
		c.listenURL = listenURL
	}
}

func WithModel(model string) TranscriptionOption {
	return func(c *TranscriptionClient) {
		c.model = model
	}
}

func NewTranscriptionClient(opts ...TranscriptionOption) (*TranscriptionClient, error) {
	client := &TranscriptionClient{
		apiKey:    os.Getenv("DEEPGRAM_API_KEY"),
		listenURL: defaultListenURL,
		model:     defaultModel,
		dialer:    websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}
	return client, nil
}

// Locale maps the session language onto a Deepgram language code.
func Locale(language string) string {
	switch language {
	case "es":
		return "es"
	default:
		return "en-US"
	}
}

func (c *TranscriptionClient) Transcribe(ctx context.Context, utterance audio.Utterance, language string) (string, error) {
	encodingInfo := utterance.EncodingInfo
	if encodingInfo.IsZero() {
		encodingInfo = audio.GetDefaultEncodingInfo()
	}
	encoding, err := convertEncoding(encodingInfo)
	if err != nil {
		return "", fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := c.connectWebsocket(ctx, connectionOptions{
		sampleRate: encoding.SampleRate,
		encoding:   encoding.Format.Name(),
		language:   Locale(language),
	})
	if err != nil {
		return "", fmt.Errorf("failed to open websocket: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- sendUtterance(conn, utterance.Audio, encodingInfo.Bytes(chunkDuration))
	}()

	transcript, err := readTranscript(conn)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		return "", err
	}
	if err := <-writeErr; err != nil {
		return "", err
	}

	if transcript == "" {
		return "", speechtotext.ErrUnrecognized
	}
	return transcript, nil
}

type connectionOptions struct {
	sampleRate int
	encoding   string
	language   string
}

func (c *TranscriptionClient) connectWebsocket(ctx context.Context, options connectionOptions) (*websocket.Conn, error) {
	listenUrl, err := url.Parse(c.listenURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listen url: %w", err)
	}
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", c.model)
	queryParams.Set("language", options.language)
	queryParams.Set("smart_format", "true")
	listenUrl.RawQuery = queryParams.Encode()

	conn, _, err := c.dialer.DialContext(ctx, listenUrl.String(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func sendUtterance(conn *websocket.Conn, audio []byte, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = len(audio)
	}
	for start := 0; start < len(audio); start += chunkSize {
		end := min(start+chunkSize, len(audio))
		if err := conn.WriteMessage(websocket.BinaryMessage, audio[start:end]); err != nil {
			return fmt.Errorf("failed to write to deepgram client: %w", err)
		}
	}

	if err := conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		return fmt.Errorf("failed to close deepgram stream: %w", err)
	}
	return nil
}

// readTranscript reads until the server closes the socket and joins every
// final result it sent.
func readTranscript(conn *websocket.Conn) (string, error) {
	var parts []string
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) && len(parts) > 0 {
				log.Println("Deepgram connection dropped after final results", "error", err)
				break
			}
			return "", fmt.Errorf("failed to read deepgram websocket message: %w", err)
		}
		if msgType == websocket.BinaryMessage {
			continue
		}

		if transcript, ok := parseFinalTranscript(msg); ok {
			parts = append(parts, transcript)
		}
	}

	return strings.Join(parts, " "), nil
}

func parseFinalTranscript(msg []byte) (string, bool) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		log.Println("Failed to unmarshal deepgram message", "error", err)
		return "", false
	}
	if api.TypeResponse(parsedMsg.Type) != api.TypeMessageResponse {
		return "", false
	}

	var msgResp api.MessageResponse
	if err := json.Unmarshal(msg, &msgResp); err != nil {
		log.Println("Failed to unmarshal deepgram message", err)
		return "", false
	}
	if !msgResp.IsFinal || len(msgResp.Channel.Alternatives) == 0 {
		return "", false
	}

	transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
	return transcript, transcript != ""
}
