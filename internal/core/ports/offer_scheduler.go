package ports

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// OfferScheduler arranges for an offer's expiry to be handled when its TTL
// elapses. The in-process implementation uses timers; a cron sweep over the
// offer table backs it up, so a lost timer delays expiry but never loses it.
type OfferScheduler interface {
	// Schedule registers the offer for expiry handling at the given instant.
	// Scheduling the same offer again replaces the previous registration.
	Schedule(offerID kernel.UUID, expiresAt time.Time)

	// Cancel drops the registration for the offer, if any. Called when the
	// offer resolves before its deadline. A late cancel is harmless because
	// expiry handling re-checks the offer's status before acting.
	Cancel(offerID kernel.UUID)
}
