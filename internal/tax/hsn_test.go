package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHSNCode(t *testing.T) {
	ptr := func(s string) *string { return &s }

	got, err := NormalizeHSNCode(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = NormalizeHSNCode(ptr("   "))
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, valid := range []string{"1006", "100630", " 10063010 "} {
		got, err = NormalizeHSNCode(ptr(valid))
		require.NoError(t, err, valid)
		assert.NotContains(t, *got, " ")
	}

	for _, invalid := range []string{"10", "10063", "ABCD", "100630101"} {
		_, err = NormalizeHSNCode(ptr(invalid))
		assert.ErrorIs(t, err, ErrInvalidHSNCode, invalid)
	}
}
