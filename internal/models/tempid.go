package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const tempIDPrefix = "temp_"

// NewTempID generates a local-only placeholder id for a record created
// while offline. The timestamp keeps ids roughly ordered; the uuid
// fragment avoids collisions within the same millisecond.
func NewTempID() string {
	return fmt.Sprintf("%s%d_%s", tempIDPrefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// IsTempID reports whether id was generated locally and is not yet
// known to the backend.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}
