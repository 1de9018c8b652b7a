package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImpl struct{ n int }

func TestRegisterAndGetInstanceCaches(t *testing.T) {
	l := NewLoader()
	builds := 0
	l.Register("iface.Thing", "stub", func() (any, error) {
		builds++
		return &stubImpl{n: builds}, nil
	})

	first, err := l.GetInstance("iface.Thing", "stub")
	require.NoError(t, err)
	second, err := l.GetInstance("iface.Thing", "stub")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
}

func TestGetInstanceUnknownKey(t *testing.T) {
	l := NewLoader()
	_, err := l.GetInstance("iface.Thing", "missing")
	require.Error(t, err)
}

func TestLaterRegistrationWins(t *testing.T) {
	l := NewLoader()
	l.Register("iface.Thing", "x", func() (any, error) { return &stubImpl{n: 1}, nil })
	l.Register("iface.Thing", "x", func() (any, error) { return &stubImpl{n: 2}, nil })

	inst, err := l.GetInstance("iface.Thing", "x")
	require.NoError(t, err)
	assert.Equal(t, 2, inst.(*stubImpl).n)
}

func TestFactoryErrorPropagates(t *testing.T) {
	l := NewLoader()
	l.Register("iface.Thing", "broken", func() (any, error) {
		return nil, errors.New("boom")
	})
	_, err := l.GetInstance("iface.Thing", "broken")
	require.Error(t, err)
}

func TestHasAndKeys(t *testing.T) {
	l := NewLoader()
	assert.False(t, l.Has("iface.Thing", "x"))
	l.Register("iface.Thing", "x", func() (any, error) { return &stubImpl{}, nil })
	l.Register("iface.Thing", "y", func() (any, error) { return &stubImpl{}, nil })
	assert.True(t, l.Has("iface.Thing", "x"))
	assert.ElementsMatch(t, []string{"x", "y"}, l.Keys("iface.Thing"))
}
