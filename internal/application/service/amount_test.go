package service

import (
	"math"
	"testing"

	"github.com/damon-houk/currency-rate-cache/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"100", 100},
		{"12.5", 12.5},
		{"12,5", 12.5},
		{" 0.01 ", 0.01},
		{"-3", -3},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	for _, input := range []string{"", "abc", "1.2.3", "NaN", "ten", "1e400", "-1e400"} {
		_, err := ParseAmount(input)
		assert.ErrorIs(t, err, entity.ErrInvalidAmount, input)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "110.00", FormatAmount(100*1.1))
	assert.Equal(t, "0.86", FormatAmount(0.85672))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "17012.50", FormatAmount(17012.5))

	assert.NotPanics(t, func() {
		assert.Equal(t, "+Inf", FormatAmount(math.Inf(1)))
		assert.Equal(t, "NaN", FormatAmount(math.NaN()))
	})
}
