package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/widgetql/internal/dates"
)

var _ dates.Clock = (*FrozenClock)(nil)

func TestFrozenClock(t *testing.T) {
	start := time.Date(2024, time.May, 15, 10, 30, 0, 0, time.UTC)
	clock := NewFrozenClock(start)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start, clock.Now(), "repeated reads do not drift")

	clock.Advance(48 * time.Hour)
	assert.Equal(t, start.AddDate(0, 0, 2), clock.Now())

	clock.Set(start)
	assert.Equal(t, start, clock.Now())
}
