// Package httpserver exposes the assistant over HTTP: a launch form and an
// endpoint that runs one session per request.
package httpserver

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	assistant "github.com/koscakluka/nova/core"
	"github.com/koscakluka/nova/core/credentials"
)

//go:embed templates/index.html
var indexHTML []byte

// ErrSessionRunning is reported when a session is requested while another
// one owns the microphone.
var ErrSessionRunning = errors.New("assistant session already running")

// Runner runs one assistant session to completion.
type Runner func(ctx context.Context, params assistant.Params, creds credentials.Credentials) error

// Server bundles HTTP router and dependencies.
type Server struct {
	Router *echo.Echo

	run     Runner
	running atomic.Bool
}

type executeRequest struct {
	Language        string          `json:"language"`
	SpeedMultiplier json.RawMessage `json:"speed_multiplier"`
	AssistantName   string          `json:"assistant_name"`
	Credentials     json.RawMessage `json:"credentials"`
}

type executeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// New creates a configured Echo server instance.
func New(run Runner) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{Router: e, run: run}
	e.GET("/", s.index)
	e.GET("/healthz", s.healthz)
	e.POST("/execute_assistant", s.executeAssistant)
	return s
}

func (s *Server) index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

func (s *Server) healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// executeAssistant blocks until the session ends. Session failures are
// reported in the body with status 200; only unusable requests get 400.
func (s *Server) executeAssistant(c echo.Context) error {
	var req executeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, executeResponse{Error: "invalid request body"})
	}

	params, creds, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, executeResponse{Error: err.Error()})
	}

	if !s.running.CompareAndSwap(false, true) {
		return c.JSON(http.StatusOK, executeResponse{Error: ErrSessionRunning.Error()})
	}
	defer s.running.Store(false)

	if err := s.run(c.Request().Context(), params, creds); err != nil {
		log.Printf("Assistant session failed: %v", err)
		return c.JSON(http.StatusOK, executeResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, executeResponse{Success: true})
}

func (r executeRequest) parse() (assistant.Params, credentials.Credentials, error) {
	speed, err := parseSpeedMultiplier(r.SpeedMultiplier)
	if err != nil {
		return assistant.Params{}, credentials.Credentials{}, err
	}
	if len(r.Credentials) == 0 {
		return assistant.Params{}, credentials.Credentials{}, errors.New("credentials are required")
	}
	creds, err := credentials.FromValue(r.Credentials)
	if err != nil {
		return assistant.Params{}, credentials.Credentials{}, err
	}

	return assistant.Params{
		AssistantName:   strings.ToLower(r.AssistantName),
		Language:        r.Language,
		SpeedMultiplier: speed,
	}, creds, nil
}

// parseSpeedMultiplier accepts both 1.25 and "1.25".
func parseSpeedMultiplier(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.New("speed_multiplier is required")
	}

	var speed float64
	if err := json.Unmarshal(raw, &speed); err == nil {
		return speed, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, fmt.Errorf("invalid speed_multiplier %s", raw)
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid speed_multiplier %q", text)
	}
	return speed, nil
}
