package openai

import (
	"context"
	"errors"
	"iter"
	"net/http"
	"sync"

	"github.com/koscakluka/nova/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

var ErrMissingAPIKey = errors.New("openai api key is required")

// Client holds one server-side conversation on the OpenAI Responses API. The
// conversation is created on the first Ask and deleted on Close.
type Client struct {
	apiKey     string
	model      string
	title      string
	baseURL    string
	httpClient *http.Client

	conversationID string
	mu             sync.Mutex
}

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithConversationTitle stores title in the conversation metadata.
func WithConversationTitle(title string) ClientOption {
	return func(c *Client) { c.title = title }
}

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := &Client{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
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

// Ask sends prompt as the next user message and yields the reply as it grows.
func (c *Client) Ask(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		conversationID, err := c.ensureConversation(ctx)
		if err != nil {
			yield("", err)
			return
		}

		stream := &Stream{
			client:         c,
			conversationID: conversationID,
			prompt:         prompt,
		}
		for reply, err := range llms.Replies(ctx, stream) {
			if !yield(reply, err) {
				return
			}
		}
	}
}

func (c *Client) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

// Close deletes the conversation, if one was started.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conversationID == "" {
		return nil
	}
	if err := c.deleteConversation(ctx, c.conversationID); err != nil {
		return err
	}
	c.conversationID = ""
	return nil
}

func (c *Client) ensureConversation(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conversationID != "" {
		return c.conversationID, nil
	}

	id, err := c.createConversation(ctx)
	if err != nil {
		return "", err
	}
	c.conversationID = id
	return id, nil
}
