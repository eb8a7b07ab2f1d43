// README: Identifier value object shared by sessions, users and usage records.
package types

import (
	"strings"

	"github.com/google/uuid"
)

type ID string

// NewID returns a random identifier without dashes (32 hex chars).
func NewID() ID {
	return ID(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (id ID) String() string {
	return string(id)
}
