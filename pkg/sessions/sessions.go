// Package sessions defines the session-container contracts the message hub
// depends on: attribute storage scoped to a user session and the
// passivation/activation lifecycle notifications.
package sessions

import (
	"github.com/go-go-golems/msghub/pkg/ui"
)

// Storage is session-scoped attribute storage. Put overwrites any prior
// value at key; Remove of an absent key is a no-op. Implementations must be
// safe for concurrent use.
type Storage interface {
	Put(key string, value any)
	Remove(key string)
}

// SessionSet enumerates the UI instances live after a session revival, in
// container order: sessions in the order the container reports them, UIs
// within a session in the order reported, pre-flattened.
type SessionSet interface {
	AllUIs() []ui.UI
}

// UIList is a SessionSet over a fixed, ordered slice.
type UIList []ui.UI

func (l UIList) AllUIs() []ui.UI { return l }

// PassivationListener is notified around a session's serialization round
// trip. BeforeSerialize runs before the session snapshot is taken and must
// release any non-serializable live resources. AfterRevive runs after the
// session has been deserialized, possibly on a different node; set holds
// the UI instances live there.
type PassivationListener interface {
	BeforeSerialize()
	AfterRevive(set SessionSet) error
}
