// internal/geo/haversine_test.go
package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_ZeroDistance(t *testing.T) {
	d := Haversine(48.137, 11.576, 48.137, 11.576)
	assert.InDelta(t, 0.0, d, 0.001)
}

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		delta                  float64
	}{
		{
			name: "Munich to Paris",
			lat1: 48.137, lon1: 11.576,
			lat2: 48.857, lon2: 2.352,
			wantKm: 685, delta: 10,
		},
		{
			name: "Munich to Warsaw",
			lat1: 48.137, lon1: 11.576,
			lat2: 52.230, lon2: 21.011,
			wantKm: 811, delta: 10,
		},
		{
			name: "Berlin to Hamburg",
			lat1: 52.520, lon1: 13.405,
			lat2: 53.551, lon2: 9.994,
			wantKm: 255, delta: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantKm, d, tt.delta)
		})
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	d1 := Haversine(48.137, 11.576, 52.230, 21.011)
	d2 := Haversine(52.230, 21.011, 48.137, 11.576)
	assert.InDelta(t, d1, d2, 0.0001)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(48.137, 11.576))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}
