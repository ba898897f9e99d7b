package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	t.Run("one degree of latitude", func(t *testing.T) {
		// ~111.19 km along a meridian.
		d := Distance(0, 0, 1, 0)
		assert.InDelta(t, 111.19, d, 0.15)
	})

	t.Run("same point", func(t *testing.T) {
		assert.Zero(t, Distance(28.6139, 77.2090, 28.6139, 77.2090))
	})

	t.Run("known city pair", func(t *testing.T) {
		// Delhi to Mumbai, roughly 1150 km great-circle.
		d := Distance(28.6139, 77.2090, 19.0760, 72.8777)
		assert.InDelta(t, 1150, d, 20)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Distance(12.97, 77.59, 13.08, 80.27)
		b := Distance(13.08, 80.27, 12.97, 77.59)
		assert.InDelta(t, a, b, 1e-9)
	})
}
