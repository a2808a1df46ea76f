package strutils

import (
	"fmt"
	"strings"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/google/uuid"
)

const MAX_CONTENT_ID_LENGTH = 64

// NormalizeUUID returns the lowercase, dashed form of a UUID. Stripped and uppercase input is accepted.
func NormalizeUUID(input string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("%w: invalid uuid '%.50s': %w", domain.ErrInvalidIdentifier, input, err)
	}
	return parsed.String(), nil
}

func UUIDIsNormalized(input string) bool {
	normalized, err := NormalizeUUID(input)
	if err != nil {
		return false
	}
	return normalized == input
}

func isContentIDRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
}

// NormalizeContentID lowercases a deity, badge, achievement, path or chapter id and checks
// that it only uses [a-z0-9_-]
func NormalizeContentID(input string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", fmt.Errorf("%w: empty id", domain.ErrInvalidIdentifier)
	}
	if len(normalized) > MAX_CONTENT_ID_LENGTH {
		return "", fmt.Errorf("%w: id longer than %d characters", domain.ErrInvalidIdentifier, MAX_CONTENT_ID_LENGTH)
	}
	for _, r := range normalized {
		if !isContentIDRune(r) {
			return "", fmt.Errorf("%w: invalid character %q in '%s'", domain.ErrInvalidIdentifier, r, normalized)
		}
	}
	return normalized, nil
}
