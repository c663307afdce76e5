package assistant

import "strings"

// Vocabulary holds the words that, followed by the assistant name, wake the
// assistant up or end the session. All words are matched in lower case.
type Vocabulary struct {
	Activation  []string
	Termination []string
}

// DefaultVocabulary covers English and Spanish. Both sets are active no
// matter which language the session speaks.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Activation:  []string{"hello", "hey", "okey", "hola"},
		Termination: []string{"bye", "adios"},
	}
}

func (v Vocabulary) WakePhrases(name string) []string {
	return phrases(v.Activation, name)
}

func (v Vocabulary) StopPhrases(name string) []string {
	return phrases(v.Termination, name)
}

// MatchesStop reports whether a stop phrase appears anywhere in transcript.
func (v Vocabulary) MatchesStop(transcript, name string) bool {
	return containsAny(transcript, v.StopPhrases(name))
}

// MatchesWake reports whether a wake phrase appears anywhere in transcript.
func (v Vocabulary) MatchesWake(transcript, name string) bool {
	return containsAny(transcript, v.WakePhrases(name))
}

// StripWake removes every wake phrase from transcript and returns the rest
// as the prompt.
func (v Vocabulary) StripWake(transcript, name string) string {
	prompt := strings.ToLower(transcript)
	for _, phrase := range v.WakePhrases(name) {
		prompt = strings.ReplaceAll(prompt, phrase, "")
	}
	return strings.TrimSpace(prompt)
}

func phrases(words []string, name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	result := make([]string, 0, len(words))
	for _, word := range words {
		result = append(result, strings.ToLower(word)+" "+name)
	}
	return result
}

func containsAny(transcript string, phrases []string) bool {
	transcript = strings.ToLower(transcript)
	for _, phrase := range phrases {
		if strings.Contains(transcript, phrase) {
			return true
		}
	}
	return false
}
