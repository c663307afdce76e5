// Command nova talks to the user through the microphone and speakers until
// they say the stop phrase.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	assistant "github.com/koscakluka/nova/core"
	"github.com/koscakluka/nova/core/credentials"
	"github.com/koscakluka/nova/core/events"
	"github.com/koscakluka/nova/internal/app"
	"github.com/koscakluka/nova/internal/config"
	"github.com/koscakluka/nova/internal/tui"
)

const tuiLogFile = "nova.log"

func main() {
	var (
		language        string
		speedMultiplier float64
		assistantName   string
		credentialsFile string
		showTUI         bool
	)
	flag.StringVar(&language, "language", "en", "Language code of the conversation (en or es)")
	flag.StringVar(&language, "l", "en", "Shorthand for --language")
	flag.Float64Var(&speedMultiplier, "speed_multiplier", 1.25, "Playback speed of the assistant voice")
	flag.Float64Var(&speedMultiplier, "s", 1.25, "Shorthand for --speed_multiplier")
	flag.StringVar(&assistantName, "assistant_name", "Nova", "Name the assistant answers to")
	flag.StringVar(&assistantName, "a", "Nova", "Shorthand for --assistant_name")
	flag.StringVar(&credentialsFile, "credentials", "", "Credentials file (defaults to NOVA_CREDENTIALS_FILE)")
	flag.BoolVar(&showTUI, "tui", false, "Show the conversation in a terminal view")
	flag.Parse()

	if language != "en" && language != "es" {
		log.Fatalf("Unsupported language %q, expected en or es", language)
	}

	var logOutput io.Writer = os.Stderr
	if showTUI {
		logFile, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		logOutput = logFile
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOutput, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if credentialsFile == "" {
		credentialsFile = cfg.CredentialsFile
	}
	creds, err := credentials.Load(credentialsFile)
	if err != nil {
		log.Fatalf("Failed to load credentials: %v", err)
	}

	params := assistant.Params{
		AssistantName:   assistantName,
		Language:        language,
		SpeedMultiplier: speedMultiplier,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func(ctx context.Context, onEvent func(events.Event)) error {
		return app.Run(ctx, cfg, params, creds, assistant.WithEventHandler(onEvent))
	}

	if showTUI {
		err = tui.Run(ctx, assistantName, run)
	} else {
		err = run(ctx, nil)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Assistant failed: %v", err)
	}
}
