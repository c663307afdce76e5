package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/koscakluka/nova/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	eventPrefix = "event:"
	chunkPrefix = "data:"
)

type requestBody struct {
	Model        string          `json:"model"`
	Input        []openAIMessage `json:"input"`
	Conversation string          `json:"conversation,omitempty"`
	Stream       bool            `json:"stream"`
}

type openAIMessage struct {
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Stream is a single streamed response within a conversation.
type Stream struct {
	client         *Client
	conversationID string
	prompt         string
}

func (s *Stream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "prompt llm stream")
		defer span.End()
		span.SetAttributes(
			attribute.String("request.model", s.client.model),
			attribute.String("request.conversation_id", s.conversationID),
		)

		fail := func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
		}

		resp, err := s.client.do(ctx, http.MethodPost, "/responses", requestBody{
			Model: s.client.model,
			Input: []openAIMessage{{
				Type:    "message",
				Role:    string(llms.MessageRoleUser),
				Content: s.prompt,
			}},
			Conversation: s.conversationID,
			Stream:       true,
		})
		if err != nil {
			fail(err)
			return
		}
		defer resp.Body.Close()

		span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
		if resp.StatusCode != http.StatusOK {
			fail(statusError(resp))
			return
		}

		start := time.Now()
		event := ""
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "":
				event = ""
				continue
			case strings.HasPrefix(line, eventPrefix):
				event = strings.TrimSpace(strings.TrimPrefix(line, eventPrefix))
				continue
			case !strings.HasPrefix(line, chunkPrefix):
				continue
			}
			chunk := strings.TrimSpace(strings.TrimPrefix(line, chunkPrefix))

			if event == "" {
				var typed struct {
					Type string `json:"type"`
				}
				if err := json.Unmarshal([]byte(chunk), &typed); err == nil {
					event = typed.Type
				}
			}

			switch streamingEventType(event) {
			case streamingEventResponseOutputTextDelta:
				var responseBody streamingBodyResponseTextDelta
				if err := json.Unmarshal([]byte(chunk), &responseBody); err != nil {
					if !yield(nil, fmt.Errorf("error unmarshalling JSON: %w", err)) {
						return
					}
					continue
				}
				if !yield(StreamContentChunk{content: responseBody.Delta}, nil) {
					return
				}

			case streamingEventResponseCompleted:
				usage := llms.Usage{TotalTime: time.Since(start).Seconds()}
				var responseBody streamingBodyResponseCompleted
				if err := json.Unmarshal([]byte(chunk), &responseBody); err == nil && responseBody.Response.Usage != nil {
					usage.InputTokens = responseBody.Response.Usage.InputTokens
					usage.OutputTokens = responseBody.Response.Usage.OutputTokens
					usage.TotalTokens = responseBody.Response.Usage.TotalTokens
				}
				span.SetAttributes(attribute.Int("response.total_tokens", usage.TotalTokens))
				finishReason := "completed"
				yield(StreamUsageChunk{finishReason: &finishReason, usage: usage}, nil)
				return

			case streamingEventError, streamingEventResponseFailed:
				var responseBody streamingBodyError
				_ = json.Unmarshal([]byte(chunk), &responseBody)
				fail(fmt.Errorf("response failed: %s", responseBody.message()))
				return
			}
		}

		if err := scanner.Err(); err != nil {
			fail(fmt.Errorf("error reading streamed response: %w", err))
		}
	}
}

type streamingEventType string

const (
	streamingEventResponseOutputTextDelta streamingEventType = "response.output_text.delta"
	streamingEventResponseCompleted       streamingEventType = "response.completed"
	streamingEventResponseFailed          streamingEventType = "response.failed"
	streamingEventError                   streamingEventType = "error"
)

type streamingBodyResponseTextDelta struct {
	Delta string `json:"delta"`
}

// streamingBodyResponseCompleted is emitted when the model response is complete
type streamingBodyResponseCompleted struct {
	Response struct {
		Usage *responseBodyUsage `json:"usage"`
	} `json:"response"`
}

type responseBodyUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type streamingBodyError struct {
	Message  string `json:"message"`
	Response struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"response"`
}

func (e streamingBodyError) message() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Response.Error != nil && e.Response.Error.Message != "" {
		return e.Response.Error.Message
	}
	return "unknown error"
}

type StreamContentChunk struct {
	finishReason *string
	content      string
}

func (s StreamContentChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamContentChunk) Content() string {
	return s.content
}

type StreamUsageChunk struct {
	finishReason *string
	usage        llms.Usage
}

func (s StreamUsageChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamUsageChunk) Usage() llms.Usage {
	return s.usage
}
