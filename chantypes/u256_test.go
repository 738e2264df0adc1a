package chantypes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestU256AddSub(t *testing.T) {
	a := U256From(10)
	b := U256From(3)

	require.Equal(t, U256From(13), a.Add(b))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	require.Equal(t, U256From(7), diff)

	_, err = b.Sub(a)
	require.ErrorIs(t, err, ErrUnderflow)
}

func TestU256JSONRoundTrip(t *testing.T) {
	u := U256From(123456789)

	buf, err := json.Marshal(u)
	require.NoError(t, err)
	require.Equal(t, `"123456789"`, string(buf))

	var out U256
	require.NoError(t, json.Unmarshal(buf, &out))
	require.True(t, u.Equal(out))
}

func TestU256Cmp(t *testing.T) {
	require.Equal(t, -1, U256From(1).Cmp(U256From(2)))
	require.Equal(t, 0, U256From(2).Cmp(U256From(2)))
	require.Equal(t, 1, U256From(3).Cmp(U256From(2)))
	require.True(t, U256From(3).GreaterThan(U256From(2)))
}
