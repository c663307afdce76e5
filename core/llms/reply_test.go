package llms

import (
	"context"
	"errors"
	"testing"
)

type contentChunk string

func (c contentChunk) FinishReason() *string { return nil }
func (c contentChunk) Content() string       { return string(c) }

type usageChunk struct{}

func (usageChunk) FinishReason() *string { return nil }
func (usageChunk) Usage() Usage          { return Usage{TotalTokens: 3} }

type streamStub struct {
	chunks []StreamChunk
	err    error
}

func (s streamStub) Chunks(context.Context) func(func(StreamChunk, error) bool) {
	return func(yield func(StreamChunk, error) bool) {
		for _, chunk := range s.chunks {
			if !yield(chunk, nil) {
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

func TestRepliesAccumulatesContent(t *testing.T) {
	stream := streamStub{chunks: []StreamChunk{
		contentChunk("Hello"), contentChunk(""), contentChunk(" there."), usageChunk{}, contentChunk(" Bye"),
	}}

	var got []string
	for reply, err := range Replies(context.Background(), stream) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, reply)
	}

	want := []string{"Hello", "Hello there.", "Hello there. Bye"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRepliesStopsOnError(t *testing.T) {
	streamErr := errors.New("connection reset")
	stream := streamStub{chunks: []StreamChunk{contentChunk("Partial")}, err: streamErr}

	var lastReply string
	var gotErr error
	for reply, err := range Replies(context.Background(), stream) {
		lastReply = reply
		if err != nil {
			gotErr = err
		}
	}

	if !errors.Is(gotErr, streamErr) {
		t.Fatalf("expected stream error, got %v", gotErr)
	}
	if lastReply != "Partial" {
		t.Fatalf("expected partial reply with error, got %q", lastReply)
	}
}

func TestRepliesStopsWhenConsumerBreaks(t *testing.T) {
	stream := streamStub{chunks: []StreamChunk{contentChunk("a"), contentChunk("b"), contentChunk("c")}}

	count := 0
	for range Replies(context.Background(), stream) {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("expected iteration to stop after 2, got %d", count)
	}
}
