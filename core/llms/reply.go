package llms

import (
	"context"
	"iter"
	"strings"
)

// Replies turns a stream into the growing text of the reply. Every yielded
// value extends the previous one, the last one is the complete reply. Usage
// and other non-content chunks are skipped.
func Replies(ctx context.Context, stream Stream) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		reply := strings.Builder{}
		for chunk, err := range stream.Chunks(ctx) {
			if err != nil {
				yield(reply.String(), err)
				return
			}

			content, ok := chunk.(StreamContentChunk)
			if !ok || content.Content() == "" {
				continue
			}
			reply.WriteString(content.Content())
			if !yield(reply.String(), nil) {
				return
			}
		}
	}
}
