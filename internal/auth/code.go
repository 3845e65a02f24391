package auth

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// CodeTTLMinutes is how long emailed verification codes stay valid.
const CodeTTLMinutes = 10

// GenerateCode returns a 6-character uppercase hex code for email delivery.
func GenerateCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
