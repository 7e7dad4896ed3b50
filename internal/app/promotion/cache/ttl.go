package cache

import (
	"time"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
)

// DefaultTTL bounds how long a price view is served without re-reading the
// catalog when no TTL is configured.
const DefaultTTL = 10 * time.Minute

// entryTTL clamps ttl so an entry never outlives the promotion it reflects.
// A non-positive result means the view must not be cached.
func entryTTL(ttl time.Duration, view *contracts.PriceView, now time.Time) time.Duration {
	if view.PromotionEndDate != nil {
		if until := view.PromotionEndDate.Sub(now); until < ttl {
			return until
		}
	}
	return ttl
}
