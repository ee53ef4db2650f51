package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReal(t *testing.T) {
	t.Run("Should return UTC instants", func(t *testing.T) {
		now := Real{}.Now()
		assert.Equal(t, time.UTC, now.Location())
	})
}

func TestFake(t *testing.T) {
	t.Run("Should advance and set in UTC", func(t *testing.T) {
		base := time.Date(2025, 5, 26, 9, 0, 0, 0, time.FixedZone("PDT", -7*3600))
		f := NewFake(base)

		assert.Equal(t, time.UTC, f.Now().Location())
		assert.True(t, f.Now().Equal(base))

		f.Advance(30 * time.Second)
		assert.True(t, f.Now().Equal(base.Add(30*time.Second)))

		later := base.Add(time.Hour)
		f.Set(later)
		assert.True(t, f.Now().Equal(later))
	})
}
