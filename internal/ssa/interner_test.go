package ssa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringInternerIdentity(t *testing.T) {
	si := NewStringInterner()
	a := si.Intern("main")
	b := si.Intern("main")
	require.Equal(t, a, b)
	require.Equal(t, "main", si.Get(a))

	c := si.Intern("f")
	require.NotEqual(t, a, c)

	// equal byte content interns to the same id regardless of how the
	// string was built.
	d := si.Intern("ma" + "in")
	require.Equal(t, a, d)
}

func TestLabelTableDedup(t *testing.T) {
	si := NewStringInterner()
	lt := NewLabelTable()
	f := si.Intern("f")
	g := si.Intern("g")

	a := lt.Intern(f)
	require.Equal(t, a, lt.Intern(f))
	b := lt.Intern(g)
	require.NotEqual(t, a, b)
	require.Equal(t, f, lt.At(a))
	require.Equal(t, g, lt.At(b))
}
