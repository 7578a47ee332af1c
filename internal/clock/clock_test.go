package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeopt/internal/model"
)

func TestToMinutes(t *testing.T) {
	cases := map[string]int{
		"00:00": 0,
		"08:00": 480,
		"8:05":  485,
		"23:59": 1439,
		"25:10": 1510,
	}
	for in, want := range cases {
		got, err := ToMinutes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestToMinutesRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "8", "08:60", "ab:10", "08:5", "-1:00", "123:00"} {
		_, err := ToMinutes(in)
		assert.Error(t, err, in)
	}
}

func TestRoundTrip(t *testing.T) {
	for m := 0; m < MinutesPerDay+120; m += 7 {
		got, err := ToMinutes(FromMinutes(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestFromMinutes(t *testing.T) {
	assert.Equal(t, "08:30", FromMinutes(510))
	assert.Equal(t, "00:00", FromMinutes(-15))
	assert.Equal(t, "24:00", FromMinutes(1440))
}

func TestIsWithinWindow(t *testing.T) {
	tw := model.TimeWindow{Start: "09:00", End: "11:00", Kind: model.WindowRequired}
	assert.True(t, IsWithinWindow("09:00", tw))
	assert.True(t, IsWithinWindow("10:15", tw))
	assert.True(t, IsWithinWindow("11:00", tw))
	assert.False(t, IsWithinWindow("08:59", tw))
	assert.False(t, IsWithinWindow("11:01", tw))
	assert.False(t, IsWithinWindow("bad", tw))
}
