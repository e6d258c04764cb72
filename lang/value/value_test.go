package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/ploxvm/lang/value"
)

func TestFalsey(t *testing.T) {
	require.True(t, value.Nil.Falsey())
	require.True(t, value.False.Falsey())
	require.False(t, value.True.Falsey())
	require.False(t, value.Number(0).Falsey())
	require.False(t, value.String(value.NewStr("")).Falsey())
}

func TestEqual(t *testing.T) {
	a := value.NewStr("hi")
	b := value.NewStr("hi")
	require.True(t, value.Equal(value.Number(1), value.Number(1)))
	require.False(t, value.Equal(value.Number(1), value.Number(2)))
	require.True(t, value.Equal(value.Nil, value.Nil))
	require.False(t, value.Equal(value.Nil, value.False))
	require.False(t, value.Equal(value.Number(1), value.String(a)))
	// distinct *Str objects with equal content are NOT value.Equal: that
	// guarantee belongs to the intern table, not to Equal itself.
	require.False(t, value.Equal(value.String(a), value.String(b)))
	require.True(t, value.Equal(value.String(a), value.String(a)))
}

func TestString(t *testing.T) {
	cases := []struct {
		v    value.Value
		want string
	}{
		{value.Nil, "nil"},
		{value.True, "true"},
		{value.False, "false"},
		{value.Number(3), "3"},
		{value.Number(3.5), "3.5"},
		{value.String(value.NewStr("hi")), "hi"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.v.String())
	}
}

func TestFNV1a(t *testing.T) {
	// the empty string's FNV-1a hash is the bare offset basis
	require.Equal(t, uint32(2166136261), value.FNV1a(""))
}
