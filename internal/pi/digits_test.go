package pi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pi100 = "3.1415926535897932384626433832795028841971693993751058209749445923078164062862089986280348253421170680"

func TestComputeKnownValues(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{n: 1, want: "3.1"},
		{n: 2, want: "3.14"},
		{n: 4, want: "3.1416"},
		{n: 5, want: "3.14159"},
		{n: 10, want: "3.1415926536"},
		{n: 20, want: "3.14159265358979323846"},
	}
	for _, tt := range tests {
		got, err := Compute(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestComputeHundredDigits(t *testing.T) {
	got, err := Compute(100)
	require.NoError(t, err)
	assert.Equal(t, pi100, got)
}

func TestComputeLengthAndPrefix(t *testing.T) {
	for _, n := range []int{1, 3, 57, 999} {
		got, err := Compute(n)
		require.NoError(t, err)
		assert.Len(t, got, n+2)
		assert.True(t, strings.HasPrefix(got, "3."))
	}
}

func TestComputeLargeMatchesPrefix(t *testing.T) {
	got, err := Compute(2000)
	require.NoError(t, err)
	assert.Equal(t, pi100[:90], got[:90])
}

func TestComputeRejectsNonPositive(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		_, err := Compute(n)
		assert.ErrorIs(t, err, ErrInvalidDigits)
	}
}
