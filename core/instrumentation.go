package assistant

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/nova/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

var (
	utterancesCaptured, _ = meter.Int64Counter("assistant.utterances",
		metric.WithDescription("Utterances captured from the microphone"))
	emptyTranscripts, _ = meter.Int64Counter("assistant.transcripts.empty",
		metric.WithDescription("Utterances that produced no transcript"))
	activations, _ = meter.Int64Counter("assistant.activations",
		metric.WithDescription("Transcripts that contained a wake phrase"))
	sentencesSpoken, _ = meter.Int64Counter("assistant.sentences.spoken",
		metric.WithDescription("Reply sentences handed to text-to-speech"))
)
