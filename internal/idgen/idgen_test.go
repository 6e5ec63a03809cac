package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, "1", seq.Next())
	assert.Equal(t, "2", seq.Next())

	seq.Reserve("10")
	seq.Reserve("4")
	seq.Reserve("abc")
	assert.Equal(t, "11", seq.Next())
}

func TestSequence_DoesNotWrap(t *testing.T) {
	seq := NewSequence()
	seq.Reserve("18446744073709551615")

	assert.Equal(t, "18446744073709551616", seq.Next())
	assert.Equal(t, "18446744073709551617", seq.Next())

	seq.Reserve("-3")
	seq.Reserve("0")
	assert.Equal(t, "18446744073709551618", seq.Next())
}

func TestNanoID_Unique(t *testing.T) {
	gen, err := NewNanoID(DefaultNanoIDLength)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := gen.Next()
		assert.Len(t, id, DefaultNanoIDLength)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNanoID_SkipsReservedAndIssued(t *testing.T) {
	values := []string{"a", "a", "b", "c"}
	i := 0
	gen := newNanoID(func() string {
		v := values[i]
		i++
		return v
	})
	gen.Reserve("b")

	assert.Equal(t, "a", gen.Next())
	assert.Equal(t, "c", gen.Next())
}

func TestNew(t *testing.T) {
	a, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &Sequence{}, a)

	a, err = New(StrategyNanoID)
	require.NoError(t, err)
	assert.IsType(t, &NanoID{}, a)

	_, err = New("uuid4")
	assert.Error(t, err)
}
