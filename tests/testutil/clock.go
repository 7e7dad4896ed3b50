package testutil

import (
	"time"

	"github.com/light-bringer/promo-engine/internal/pkg/clock"
)

// NewMockClock creates a clock fixed at the start of the current UTC day
// plus one hour, so promotions starting "today" are valid.
func NewMockClock() *clock.MockClock {
	return clock.NewMockClock(clock.StartOfDay(time.Now().UTC()).Add(time.Hour))
}
