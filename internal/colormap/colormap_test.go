package colormap_test

import (
	"testing"

	"codeberg.org/mutker/motortemp/internal/colormap"
	"github.com/stretchr/testify/assert"
)

const delta = 1e-4

func TestMapTemperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature float64
		minT, maxT  float64
		normalized  float64
	}{
		{"at min", 20, 20, 60, 0},
		{"mid", 50, 20, 60, 0.5},
		{"at max", 60, 20, 60, 0.6667},
		{"above max", 80, 20, 60, 1.0},
		{"below min", 10, 20, 60, -0.1667},
		{"far above", 140, 20, 60, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := colormap.MapTemperature(tt.temperature, tt.minT, tt.maxT)

			assert.InDelta(t, tt.normalized, got.Normalized, delta)
			assert.InDelta(t, got.Normalized, got.R, 0)
			assert.InDelta(t, 1-got.Normalized, got.B, 0)
		})
	}
}

func TestMapTemperatureUnclamped(t *testing.T) {
	hot := colormap.MapTemperature(140, 20, 60)
	assert.Greater(t, hot.R, 1.0)
	assert.Less(t, hot.B, 0.0)

	cold := colormap.MapTemperature(0, 20, 60)
	assert.Less(t, cold.R, 0.0)
	assert.Greater(t, cold.B, 1.0)
}

func TestMapTemperatureRange(t *testing.T) {
	assert.InDelta(t, 0.0, colormap.MapTemperatureRange(20, 20, 60).Normalized, delta)
	assert.InDelta(t, 1.0, colormap.MapTemperatureRange(60, 20, 60).Normalized, delta)
	assert.InDelta(t, 0.75, colormap.MapTemperatureRange(50, 20, 60).Normalized, delta)
	assert.InDelta(t, -0.25, colormap.MapTemperatureRange(10, 20, 60).Normalized, delta)
}

func TestScaling(t *testing.T) {
	assert.Equal(t, colormap.ByMax, colormap.ParseScaling("max"))
	assert.Equal(t, colormap.ByRange, colormap.ParseScaling("range"))
	assert.Equal(t, colormap.ByMax, colormap.ParseScaling(""))

	assert.InDelta(t, 1.0, colormap.ByMax.Map(80, 20, 60).Normalized, delta)
	assert.InDelta(t, 1.5, colormap.ByRange.Map(80, 20, 60).Normalized, delta)
	assert.Equal(t, "max", colormap.ByMax.String())
	assert.Equal(t, "range", colormap.ByRange.String())
}
