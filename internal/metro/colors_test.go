package metro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexColorBreakpoints(t *testing.T) {
	tests := []struct {
		i    int
		want string
	}{
		{0, "red"},
		{29, "red"},
		{30, "cyan"},
		{47, "cyan"},
		{48, "green"},
		{73, "green"},
		{74, "black"},
		{96, "purple"},
		{122, "purple"},
		{123, "grey"},
		{132, "orange"},
		{147, "brown"},
		{153, "yellow"},
		{163, "yellow"},
		{164, "black"},
		{168, "black"},
		{169, "pink"},
		{500, "pink"},
	}

	for _, tc := range tests {
		if got := IndexColor(tc.i, "L1"); got != tc.want {
			t.Errorf("IndexColor(%d) = %q, expected %q", tc.i, got, tc.want)
		}
	}
}

func TestLineColor(t *testing.T) {
	assert.Equal(t, "#CE1126", LineColor(0, "L1"))
	assert.Equal(t, "#F58220", LineColor(0, "L9S"))
	assert.Equal(t, "#888888", LineColor(0, "L99"))
}

func TestColorerFor(t *testing.T) {
	c, err := ColorerFor(SchemeIndex)
	require.NoError(t, err)
	assert.Equal(t, "cyan", c(30, "L5"))

	c, err = ColorerFor("")
	require.NoError(t, err)
	assert.Equal(t, "#0078C6", c(30, "L5"))

	_, err = ColorerFor("rainbow")
	assert.Error(t, err)
}
