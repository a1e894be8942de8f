package services

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const maxNicknameLength = 32

var policy = bluemonday.StrictPolicy()

// SanitizeText strips markup from user supplied text and trims whitespace.
func SanitizeText(input string) string {
	return strings.TrimSpace(policy.Sanitize(input))
}

func sanitizeNickname(nickname string) (string, error) {
	cleaned := SanitizeText(nickname)
	if cleaned == "" {
		return "", ValidationError("nickname is required")
	}
	if utf8.RuneCountInString(cleaned) > maxNicknameLength {
		return "", ValidationError("nickname must be at most %d characters", maxNicknameLength)
	}
	return cleaned, nil
}
