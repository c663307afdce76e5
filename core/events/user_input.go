package events

const (
	// KindUserTranscriptFinal identifies the final transcript for the utterance.
	KindUserTranscriptFinal Kind = "user_input.transcript_final"
	// KindUserTranscriptUnrecognized identifies an utterance without transcript.
	KindUserTranscriptUnrecognized Kind = "user_input.transcript_unrecognized"
)

// UserTranscriptFinal carries the transcript of one utterance as heard.
type UserTranscriptFinal struct {
	Base
	Transcript string
}

func NewUserTranscriptFinal(transcript string) UserTranscriptFinal {
	return UserTranscriptFinal{Base: NewBase(KindUserTranscriptFinal), Transcript: transcript}
}

// UserTranscriptUnrecognized carries the reason an utterance produced no text.
type UserTranscriptUnrecognized struct {
	Base
	Err error
}

func NewUserTranscriptUnrecognized(err error) UserTranscriptUnrecognized {
	return UserTranscriptUnrecognized{Base: NewBase(KindUserTranscriptUnrecognized), Err: err}
}
