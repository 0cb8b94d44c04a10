// Package guid produces asset GUIDs in the form Unity serializes them: 32 lowercase hex chars.
package guid

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var pattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func Valid(s string) bool { return pattern.MatchString(s) }
