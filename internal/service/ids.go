package service

import (
	"strings"

	"github.com/google/uuid"
)

// newID derives a short, prefixed, human-quotable identifier.
func newID(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
