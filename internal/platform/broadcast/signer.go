package broadcast

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

func signingPayload(m Message) []byte {
	return []byte(m.Origin + "\n" + strings.Join(m.Tags, "\n"))
}

// Verify reports whether m carries a valid signature. Without a secret every
// message is accepted.
func Verify(secret string, m Message) bool {
	if secret == "" {
		return true
	}
	want := Sign(secret, signingPayload(m))
	return hmac.Equal([]byte(want), []byte(m.Signature))
}
