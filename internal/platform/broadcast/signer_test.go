package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	// echo -n "payload" | openssl dgst -sha256 -hmac "secret"
	expected := "b82fcb791acec57859b989b430a826488ce2e479fdf92326bd0a2e8375a42ba4"
	assert.Equal(t, expected, Sign("secret", []byte("payload")))
}

func TestVerify(t *testing.T) {
	m := Message{Origin: "a", Tags: []string{"ORG:1", "PLAN"}}
	m.Signature = Sign("k", signingPayload(m))

	assert.True(t, Verify("k", m))
	assert.False(t, Verify("other", m))
	assert.True(t, Verify("", Message{Origin: "a"}))

	m.Tags = append(m.Tags, "USER")
	assert.False(t, Verify("k", m))
}
