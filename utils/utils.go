package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateTempPassword returns a random placeholder password for lazily
// created accounts. It is hashed, stored, and never shown to anyone;
// the student replaces it through the password-setup flow.
func GenerateTempPassword() string {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the process is in serious trouble
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
