package sessions

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	passivated int
	activated  int
	reviveErr  error
}

func (l *recordingListener) BeforeSerialize() { l.passivated++ }

func (l *recordingListener) AfterRevive(set SessionSet) error {
	l.activated++
	return l.reviveErr
}

func TestMemory_PutRemove(t *testing.T) {
	m := NewMemory()

	m.Put("a", 1)
	m.Put("a", 2)
	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, 1, m.Len())

	m.Remove("a")
	m.Remove("a")
	_, ok = m.Get("a")
	require.False(t, ok)
	require.Zero(t, m.Len())
}

func TestMemory_LifecycleDispatch(t *testing.T) {
	m := NewMemory()
	l := &recordingListener{}
	m.Put("hub", l)
	m.Put("plain", "not a listener")

	m.Passivate()
	require.Equal(t, 1, l.passivated)

	require.NoError(t, m.Activate(UIList(nil)))
	require.Equal(t, 1, l.activated)
}

func TestMemory_ActivateSurfacesError(t *testing.T) {
	m := NewMemory()
	boom := errors.New("no ui")
	m.Put("hub", &recordingListener{reviveErr: boom})

	err := m.Activate(UIList(nil))
	require.ErrorIs(t, err, boom)
}
