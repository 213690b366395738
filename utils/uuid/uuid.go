package uuid

import (
	google_uuid "github.com/google/uuid"
)

// MustUUID returns a random UUID string. It panics if
// the system's random source fails.
func MustUUID() string {
	return google_uuid.New().String()
}

// TempName returns prefix joined to a random UUID. Temporary
// stores use it to name their backing files.
func TempName(prefix string) string {
	return prefix + "-" + MustUUID()
}
