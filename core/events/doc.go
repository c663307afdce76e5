// Package events defines the typed events a voice session reports while it
// runs.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session_state.*
//   - conversation.*
//   - user_input.*
//   - assistant_response.*
//   - assistant_speech.*
//
// Semantics used across the package:
//
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Final: terminal immutable text for the current exchange.
//
// session_state events
//
//   - SessionStateChanged (session_state.changed): the session moved from one
//     state to another.
//
// conversation events
//
//   - ConversationStarted (conversation.started): the greeting was spoken and
//     the conversation id is known.
//   - ConversationClosed (conversation.closed): a stop phrase ended the
//     conversation and it was deleted.
//
// user_input events
//
//   - UserTranscriptFinal (user_input.transcript_final): transcript of one
//     captured utterance.
//   - UserTranscriptUnrecognized (user_input.transcript_unrecognized): an
//     utterance was captured but could not be transcribed.
//
// assistant_response events
//
//   - AssistantResponseUpdated (assistant_response.updated): snapshot of the
//     reply generated so far.
//   - AssistantResponseFinal (assistant_response.final): the complete reply.
//
// assistant_speech events
//
//   - AssistantSpeechSentence (assistant_speech.sentence_spoken): a sentence
//     was handed to text-to-speech and played.
package events
