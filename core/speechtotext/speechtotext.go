// Package speechtotext turns recorded utterances into text. Backends live in
// the subpackages and share the errors declared here.
package speechtotext

import "errors"

// ErrUnrecognized is returned when the backend heard audio but produced no
// transcript for it.
var ErrUnrecognized = errors.New("speech could not be understood")
