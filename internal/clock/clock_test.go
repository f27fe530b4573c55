package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToday_UsesClockZone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 20:00 UTC 9 июня - это уже 10 июня в Калькутте
	now := time.Date(2024, 6, 9, 20, 0, 0, 0, time.UTC).In(kolkata)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), Today(Fixed(now)))
}

func TestNew_ConvertsToLocation(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	assert.Equal(t, loc, New(loc).Now().Location())
	assert.Equal(t, time.UTC, New(nil).Now().Location())
}
