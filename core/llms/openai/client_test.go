package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type fakeResponsesAPI struct {
	mu            sync.Mutex
	created       int
	deleted       []string
	titles        []string
	conversations []string
	prompts       []string

	events []string
	status int
}

func (f *fakeResponsesAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test-key" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/conversations":
		var body createConversationRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.created++
		f.titles = append(f.titles, body.Metadata["title"])
		fmt.Fprintf(w, `{"id":"conv_%d","object":"conversation"}`, f.created)

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/conversations/"):
		f.deleted = append(f.deleted, strings.TrimPrefix(r.URL.Path, "/conversations/"))
		fmt.Fprint(w, `{"deleted":true}`)

	case r.Method == http.MethodPost && r.URL.Path == "/responses":
		var body requestBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.conversations = append(f.conversations, body.Conversation)
		if len(body.Input) > 0 {
			f.prompts = append(f.prompts, body.Input[0].Content)
		}
		if f.status != 0 {
			http.Error(w, `{"error":{"message":"rate limited"}}`, f.status)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, event := range f.events {
			fmt.Fprint(w, event)
		}

	default:
		http.NotFound(w, r)
	}
}

func sse(event, data string) string {
	return "event: " + event + "\ndata: " + data + "\n\n"
}

func newTestClient(t *testing.T, api *fakeResponsesAPI) *Client {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key",
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithConversationTitle("Voice conversation"),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestAskStreamsGrowingReply(t *testing.T) {
	api := &fakeResponsesAPI{events: []string{
		sse("response.created", `{"type":"response.created"}`),
		sse("response.output_text.delta", `{"type":"response.output_text.delta","delta":"Hi"}`),
		sse("response.output_text.delta", `{"type":"response.output_text.delta","delta":" there."}`),
		sse("response.completed", `{"type":"response.completed","response":{"usage":{"input_tokens":3,"output_tokens":2,"total_tokens":5}}}`),
	}}
	client := newTestClient(t, api)

	var replies []string
	for reply, err := range client.Ask(context.Background(), "hello") {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		replies = append(replies, reply)
	}

	if len(replies) != 2 || replies[0] != "Hi" || replies[1] != "Hi there." {
		t.Fatalf("unexpected replies %q", replies)
	}
	if client.ConversationID() != "conv_1" {
		t.Fatalf("expected conversation id conv_1, got %q", client.ConversationID())
	}
	if api.titles[0] != "Voice conversation" {
		t.Fatalf("expected conversation title in metadata, got %q", api.titles[0])
	}
	if api.prompts[0] != "hello" || api.conversations[0] != "conv_1" {
		t.Fatalf("unexpected request %q in %q", api.prompts[0], api.conversations[0])
	}
}

func TestAskReusesConversation(t *testing.T) {
	api := &fakeResponsesAPI{events: []string{
		sse("response.output_text.delta", `{"delta":"ok"}`),
		sse("response.completed", `{}`),
	}}
	client := newTestClient(t, api)

	for range 2 {
		for _, err := range client.Ask(context.Background(), "again") {
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	}

	if api.created != 1 {
		t.Fatalf("expected one conversation, got %d", api.created)
	}
	if len(api.conversations) != 2 || api.conversations[1] != "conv_1" {
		t.Fatalf("expected both responses in conv_1, got %v", api.conversations)
	}
}

func TestAskReportsStreamedErrors(t *testing.T) {
	api := &fakeResponsesAPI{events: []string{
		sse("response.output_text.delta", `{"delta":"Par"}`),
		sse("error", `{"type":"error","message":"model overloaded"}`),
	}}
	client := newTestClient(t, api)

	var gotErr error
	for _, err := range client.Ask(context.Background(), "hello") {
		if err != nil {
			gotErr = err
		}
	}
	if gotErr == nil || !strings.Contains(gotErr.Error(), "model overloaded") {
		t.Fatalf("expected streamed error, got %v", gotErr)
	}
}

func TestAskReportsHTTPStatus(t *testing.T) {
	api := &fakeResponsesAPI{status: http.StatusTooManyRequests}
	client := newTestClient(t, api)

	var gotErr error
	for _, err := range client.Ask(context.Background(), "hello") {
		gotErr = err
	}
	if gotErr == nil || !strings.Contains(gotErr.Error(), "429") {
		t.Fatalf("expected status error, got %v", gotErr)
	}
}

func TestCloseDeletesConversation(t *testing.T) {
	api := &fakeResponsesAPI{events: []string{sse("response.completed", `{}`)}}
	client := newTestClient(t, api)

	if err := client.Close(context.Background()); err != nil {
		t.Fatalf("close without conversation should be a no-op, got %v", err)
	}
	if len(api.deleted) != 0 {
		t.Fatalf("expected nothing to be deleted, got %v", api.deleted)
	}

	for range client.Ask(context.Background(), "hello") {
	}
	if err := client.Close(context.Background()); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "conv_1" {
		t.Fatalf("expected conv_1 to be deleted, got %v", api.deleted)
	}
	if client.ConversationID() != "" {
		t.Fatalf("expected conversation id to be cleared")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
