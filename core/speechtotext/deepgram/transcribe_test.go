package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/nova/core/audio"
	"github.com/koscakluka/nova/core/speechtotext"
)

type fakeListenServer struct {
	results []string

	mu       sync.Mutex
	query    url.Values
	auth     string
	received int
}

func (s *fakeListenServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.query = r.URL.Query()
	s.auth = r.Header.Get("Authorization")
	s.mu.Unlock()

	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType == websocket.BinaryMessage {
			s.mu.Lock()
			s.received += len(msg)
			s.mu.Unlock()
			continue
		}
		if strings.Contains(string(msg), "CloseStream") {
			break
		}
	}

	_ = conn.WriteJSON(resultMessage("hel", false))
	for _, result := range s.results {
		_ = conn.WriteJSON(resultMessage(result, true))
	}
	_ = conn.WriteJSON(map[string]any{"type": "Metadata"})
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_, _, _ = conn.ReadMessage()
}

func resultMessage(transcript string, final bool) map[string]any {
	return map[string]any{
		"type":     "Results",
		"is_final": final,
		"channel": map[string]any{
			"alternatives": []map[string]any{{"transcript": transcript}},
		},
	}
}

func newTestClient(t *testing.T, server *httptest.Server) *TranscriptionClient {
	t.Helper()
	client, err := NewTranscriptionClient(
		WithAPIKey("test-key"),
		WithListenURL("ws"+strings.TrimPrefix(server.URL, "http")),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestTranscribeCollectsFinalResults(t *testing.T) {
	fake := &fakeListenServer{results: []string{"Hello Nova", " how are you "}}
	server := httptest.NewServer(fake)
	defer server.Close()

	utterance := audio.Utterance{
		Audio:        make([]byte, 8000),
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
	transcript, err := newTestClient(t, server).Transcribe(context.Background(), utterance, "es")
	if err != nil {
		t.Fatalf("expected transcript, got %v", err)
	}
	if transcript != "Hello Nova how are you" {
		t.Fatalf("unexpected transcript %q", transcript)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.received != len(utterance.Audio) {
		t.Fatalf("expected %d audio bytes to be sent, got %d", len(utterance.Audio), fake.received)
	}
	if got := fake.query.Get("language"); got != "es" {
		t.Fatalf("expected language es, got %q", got)
	}
	if got := fake.query.Get("encoding"); got != "linear16" {
		t.Fatalf("expected linear16 encoding, got %q", got)
	}
	if got := fake.query.Get("sample_rate"); got != "16000" {
		t.Fatalf("expected sample rate 16000, got %q", got)
	}
	if fake.auth != "Token test-key" {
		t.Fatalf("unexpected authorization header %q", fake.auth)
	}
}

func TestTranscribeWithoutFinalResultsIsUnrecognized(t *testing.T) {
	server := httptest.NewServer(&fakeListenServer{})
	defer server.Close()

	_, err := newTestClient(t, server).Transcribe(context.Background(), audio.Utterance{
		Audio:        make([]byte, 320),
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}, "en")
	if !errors.Is(err, speechtotext.ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized, got %v", err)
	}
}

func TestTranscribeRejectsUnsupportedEncoding(t *testing.T) {
	client := &TranscriptionClient{apiKey: "key", listenURL: "ws://127.0.0.1:1", dialer: websocket.DefaultDialer}
	_, err := client.Transcribe(context.Background(), audio.Utterance{
		Audio:        []byte{0},
		EncodingInfo: audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingMulaw},
	}, "en")
	if err == nil {
		t.Fatalf("expected mulaw at 16kHz to be rejected")
	}
}

func TestNewTranscriptionClientRequiresAPIKey(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "")
	if _, err := NewTranscriptionClient(); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestLocale(t *testing.T) {
	if got := Locale("es"); got != "es" {
		t.Fatalf("expected es, got %q", got)
	}
	if got := Locale("en"); got != "en-US" {
		t.Fatalf("expected en-US, got %q", got)
	}
}

func TestParseFinalTranscriptIgnoresInterimAndOtherTypes(t *testing.T) {
	interim, _ := json.Marshal(resultMessage("partial", false))
	if _, ok := parseFinalTranscript(interim); ok {
		t.Fatalf("expected interim result to be ignored")
	}
	if _, ok := parseFinalTranscript([]byte(`{"type":"SpeechStarted"}`)); ok {
		t.Fatalf("expected non-result message to be ignored")
	}
	if _, ok := parseFinalTranscript([]byte(`not json`)); ok {
		t.Fatalf("expected malformed message to be ignored")
	}

	final, _ := json.Marshal(resultMessage(" done ", true))
	if transcript, ok := parseFinalTranscript(final); !ok || transcript != "done" {
		t.Fatalf("expected final transcript %q, got %q (%v)", "done", transcript, ok)
	}
}
