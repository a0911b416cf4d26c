package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReferralCodeShape(t *testing.T) {
	code := GenerateReferralCode("Maria Silva")

	parts := strings.SplitN(code, "-", 2)
	assert.Len(t, parts, 2)
	assert.Equal(t, "maria", parts[0])
	assert.Len(t, parts[1], 4)
}

func TestGenerateReferralCodeStripsNonAlphanumeric(t *testing.T) {
	code := GenerateReferralCode("José-Carlos!")

	assert.True(t, strings.HasPrefix(code, "joscarlos-"))
}

func TestGenerateReferralCodeEmptyName(t *testing.T) {
	code := GenerateReferralCode("")
	assert.True(t, strings.HasPrefix(code, "user-"))

	code = GenerateReferralCode("   ")
	assert.True(t, strings.HasPrefix(code, "user-"))
}

func TestGenerateReferralCodeUnique(t *testing.T) {
	a := GenerateReferralCode("Ana")
	b := GenerateReferralCode("Ana")

	assert.NotEqual(t, a, b)
}
