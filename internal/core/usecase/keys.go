package usecase

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

const (
	roleSource = "source"
	roleFinal  = "final"
)

// artifactKey builds a collision-resistant object-store key. Unrelated
// requests sharing a document key prefix never overwrite each other because
// of the UUID suffix.
func artifactKey(documentKey, role string) string {
	return fmt.Sprintf("%s_%s_%s.pdf", sanitizeKeyPart(documentKey), role, uuid.NewString())
}

func sanitizeKeyPart(part string) string {
	part = strings.ReplaceAll(part, " ", "_")
	part = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, part)
	if part == "" {
		return "document"
	}
	return part
}

// NormalizeOwnerKey strips every non-digit character from an identity
// subject. An empty result is a terminal validation failure.
func NormalizeOwnerKey(ownerSubject string) (string, error) {
	var b strings.Builder
	for _, r := range ownerSubject {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "normalize owner key",
			fmt.Errorf("owner subject %q contains no digits", ownerSubject))
	}
	return b.String(), nil
}
