// Package credentials reads the access token used to talk to the language
// model provider.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrMissingAccessToken = errors.New("credentials have no accessToken")

type Credentials struct {
	AccessToken string `json:"accessToken"`
}

// Load reads a credentials JSON file such as credentials.json.
func Load(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}
	return Parse(data)
}

// Parse decodes a credentials JSON document.
func Parse(data []byte) (Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return creds, creds.Validate()
}

// FromValue accepts credentials either as a JSON object or as a string
// holding the JSON document, which is how HTML forms submit them.
func FromValue(raw json.RawMessage) (Credentials, error) {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		return Parse([]byte(encoded))
	}
	return Parse(raw)
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return ErrMissingAccessToken
	}
	return nil
}
