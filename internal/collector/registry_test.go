package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(NewMemory("memory"))

	s, ok := r.Get("memory")
	require.True(t, ok)
	assert.Equal(t, "memory", s.Name())

	_, ok = r.Get("yahoo")
	assert.False(t, ok)
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	r.Register(NewMemory("b"))
	r.Register(NewMemory("a"))

	_, err := r.Resolve("a")
	assert.NoError(t, err)

	_, err = r.Resolve("c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[a b]")
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register(NewMemory("yahoo"))
	r.Register(NewMemory("memory"))
	r.Register(NewMemory("yahoo"))

	assert.Equal(t, []string{"memory", "yahoo"}, r.Names())
}
