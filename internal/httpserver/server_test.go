package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	assistant "github.com/koscakluka/nova/core"
	"github.com/koscakluka/nova/core/credentials"
)

type runnerStub struct {
	mu     sync.Mutex
	params []assistant.Params
	creds  []credentials.Credentials
	err    error
}

func (r *runnerStub) run(_ context.Context, params assistant.Params, creds credentials.Credentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = append(r.params, params)
	r.creds = append(r.creds, creds)
	return r.err
}

func post(t *testing.T, srv *Server, body string) (*httptest.ResponseRecorder, executeResponse) {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/execute_assistant", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, r)

	var resp executeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHealthz(t *testing.T) {
	srv := New((&runnerStub{}).run)
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestIndexServesForm(t *testing.T) {
	srv := New((&runnerStub{}).run)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "/execute_assistant")
	require.Contains(t, w.Body.String(), `name="speed_multiplier"`)
}

func TestExecuteAssistantAcceptsStringFields(t *testing.T) {
	runner := &runnerStub{}
	srv := New(runner.run)

	w, resp := post(t, srv, `{"language":"es","speed_multiplier":"1.5","assistant_name":"Nova","credentials":"{\"accessToken\":\"sk-test\"}"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	require.Empty(t, resp.Error)
	require.Equal(t, []assistant.Params{{AssistantName: "nova", Language: "es", SpeedMultiplier: 1.5}}, runner.params)
	require.Equal(t, "sk-test", runner.creds[0].AccessToken)
}

func TestExecuteAssistantAcceptsNumbersAndObjects(t *testing.T) {
	runner := &runnerStub{}
	srv := New(runner.run)

	_, resp := post(t, srv, `{"language":"en","speed_multiplier":1.25,"assistant_name":"Nova","credentials":{"accessToken":"sk-test"}}`)

	require.True(t, resp.Success)
	require.Equal(t, 1.25, runner.params[0].SpeedMultiplier)
}

func TestExecuteAssistantReportsSessionErrors(t *testing.T) {
	runner := &runnerStub{err: errors.New("failed to generate reply: 401 Unauthorized")}
	srv := New(runner.run)

	w, resp := post(t, srv, `{"language":"en","speed_multiplier":1,"assistant_name":"Nova","credentials":{"accessToken":"bad"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, resp.Success)
	require.Equal(t, "failed to generate reply: 401 Unauthorized", resp.Error)
}

func TestExecuteAssistantRejectsMalformedRequests(t *testing.T) {
	tests := map[string]string{
		"not json":            `not-json`,
		"bad speed":           `{"language":"en","speed_multiplier":"fast","assistant_name":"Nova","credentials":{"accessToken":"x"}}`,
		"missing speed":       `{"language":"en","assistant_name":"Nova","credentials":{"accessToken":"x"}}`,
		"missing credentials": `{"language":"en","speed_multiplier":1,"assistant_name":"Nova"}`,
		"missing token":       `{"language":"en","speed_multiplier":1,"assistant_name":"Nova","credentials":"{}"}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			runner := &runnerStub{}
			srv := New(runner.run)

			w, resp := post(t, srv, body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			require.False(t, resp.Success)
			require.NotEmpty(t, resp.Error)
			require.Empty(t, runner.params)
		})
	}
}

func TestExecuteAssistantRejectsConcurrentSessions(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := New(func(context.Context, assistant.Params, credentials.Credentials) error {
		close(started)
		<-release
		return nil
	})

	body := `{"language":"en","speed_multiplier":1,"assistant_name":"Nova","credentials":{"accessToken":"x"}}`
	done := make(chan executeResponse, 1)
	go func() {
		r := httptest.NewRequest(http.MethodPost, "/execute_assistant", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.Router.ServeHTTP(w, r)
		var resp executeResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		done <- resp
	}()
	<-started

	_, resp := post(t, srv, body)
	require.False(t, resp.Success)
	require.Equal(t, ErrSessionRunning.Error(), resp.Error)

	close(release)
	require.True(t, (<-done).Success)
}
