package hub

import (
	"github.com/pkg/errors"

	"github.com/go-go-golems/msghub/pkg/sessions"
	"github.com/go-go-golems/msghub/pkg/ui"
)

// LocateUI returns the first UI in set whose kind tag equals kind.
//
// First match wins. The scan order is the container's enumeration order as
// reported by set; when several UIs of the same kind are live, the binding
// is deterministic for a given enumeration but otherwise unspecified.
func LocateUI(set sessions.SessionSet, kind string) (ui.UI, error) {
	for _, u := range set.AllUIs() {
		if u.Kind() == kind {
			return u, nil
		}
	}
	return nil, errors.Wrap(ErrUINotFound, kind)
}
