package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type createConversationRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}

type conversationResponse struct {
	ID string `json:"id"`
}

func (c *Client) createConversation(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "create conversation")
	defer span.End()

	reqBody := createConversationRequest{}
	if c.title != "" {
		reqBody.Metadata = map[string]string{"title": c.title}
	}

	resp, err := c.do(ctx, http.MethodPost, "/conversations", reqBody)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := statusError(resp)
		span.RecordError(err)
		return "", err
	}

	var conversation conversationResponse
	if err := json.NewDecoder(resp.Body).Decode(&conversation); err != nil {
		return "", fmt.Errorf("error unmarshalling conversation: %w", err)
	}
	if conversation.ID == "" {
		return "", fmt.Errorf("conversation created without an id")
	}

	logger.DebugContext(ctx, "conversation created", "conversation_id", conversation.ID)
	return conversation.ID, nil
}

func (c *Client) deleteConversation(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "delete conversation")
	defer span.End()

	resp, err := c.do(ctx, http.MethodDelete, "/conversations/"+id, nil)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		err := statusError(resp)
		span.RecordError(err)
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		requestBodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error marshalling JSON: %w", err)
		}
		reader = bytes.NewReader(requestBodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if len(bytes.TrimSpace(errorBody)) == 0 {
		return fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}
	return fmt.Errorf("non-OK HTTP status: %s: %s", resp.Status, bytes.TrimSpace(errorBody))
}
