package hub

import "fmt"

// RegistrationKey derives the session-storage key for a hub serving the
// given UI kind and founding UI identity. The key is computed once at
// construction and reused verbatim for deregistration, so a hub revived
// from a serialized session replaces its own prior entry instead of
// accumulating duplicates.
func RegistrationKey(uiKind string, uiID int) string {
	return fmt.Sprintf("msghub/%s/%d", uiKind, uiID)
}
