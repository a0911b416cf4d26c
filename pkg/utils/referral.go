package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateReferralCode builds a shareable referral code of the form
// "firstname-xxxx" from the user's display name plus a random suffix.
// Non-alphanumeric characters are stripped from the name part.
func GenerateReferralCode(name string) string {
	first := ""
	if fields := strings.Fields(name); len(fields) > 0 {
		first = strings.ToLower(fields[0])
	}

	var b strings.Builder
	for _, r := range first {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	prefix := b.String()
	if prefix == "" {
		prefix = "user"
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return prefix + "-" + suffix
}
