package groq

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/koscakluka/nova/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultURL   = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel = "llama-3.3-70b-versatile"
)

var ErrMissingAPIKey = errors.New("groq api key is required")

var tokensUsed, _ = meter.Int64Counter("llm.tokens",
	metric.WithDescription("Tokens used by chat completions"))

// Client keeps the conversation history locally and replays it on every
// chat completion request.
type Client struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
	title      string

	history        []llms.Message
	conversationID string
	mu             sync.Mutex
}

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithConversationTitle names the conversation. Groq has no server-side
// conversations, so the title is only kept on the client.
func WithConversationTitle(title string) ClientOption {
	return func(c *Client) { c.title = title }
}

func WithURL(url string) ClientOption {
	return func(c *Client) { c.url = url }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := &Client{
		apiKey: apiKey,
		model:  defaultModel,
		url:    defaultURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Ask sends prompt after the recorded history and yields the reply as it
// grows. The exchange is only recorded once the reply is complete.
func (c *Client) Ask(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		c.mu.Lock()
		messages := append(slices.Clone(c.history), llms.Message{Role: llms.MessageRoleUser, Content: prompt})
		c.mu.Unlock()

		stream := &Stream{client: c, messages: messages}
		reply := ""
		for partial, err := range llms.Replies(ctx, stream) {
			if err != nil {
				yield(partial, err)
				return
			}
			reply = partial
			if !yield(partial, nil) {
				return
			}
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		c.history = append(messages, llms.Message{Role: llms.MessageRoleAssistant, Content: reply})
		if c.conversationID == "" {
			c.conversationID = uuid.NewString()
			logger.DebugContext(ctx, "conversation started", "conversation_id", c.conversationID, "title", c.title)
		}
	}
}

func (c *Client) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

func (c *Client) Title() string { return c.title }

// History returns a copy of the recorded exchanges.
func (c *Client) History() []llms.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

// Close forgets the conversation.
func (c *Client) Close(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
	c.conversationID = ""
	return nil
}
