// Package validator implements the fixed decision order an incoming event
// must pass before the storage engine will consider it: structural
// validity (id and signature), freshness bounds, expiration, and
// proof-of-work difficulty.
package validator

import (
	"time"

	"wisp.relay/pkg/crypto"
	"wisp.relay/pkg/encoders/event"
	"wisp.relay/pkg/reason"
)

// Config carries the thresholds the validator enforces. Zero values
// disable the corresponding check except where noted.
type Config struct {
	// MaxFutureDrift is how far into the future (relative to the local
	// clock) an event's created_at may be before it is rejected.
	MaxFutureDrift time.Duration
	// MaxAge is how far into the past an event's created_at may be
	// before it is rejected. Zero disables the check.
	MaxAge time.Duration
	// MinPowDifficulty is the minimum number of leading zero bits the
	// event id must have, per NIP-13. Zero disables the check.
	MinPowDifficulty int
}

// V validates incoming events against a fixed Config and a pluggable
// signature Verifier.
type V struct {
	cfg      Config
	verifier crypto.Verifier
}

// New constructs a validator with the given config and signature verifier.
func New(cfg Config, verifier crypto.Verifier) *V {
	return &V{cfg: cfg, verifier: verifier}
}

// Validate runs the fixed decision order against ev, using now as the
// reference clock. It returns reason.None on acceptance, or the rejection
// prefix and a human-readable detail otherwise.
func (v *V) Validate(ev *event.E, now time.Time) (reason.Prefix, string) {
	if len(ev.ID) != 32 || len(ev.Pubkey) != 32 || len(ev.Sig) != 64 {
		return reason.Invalid, "malformed event: wrong field length"
	}
	if !ev.VerifyID() {
		return reason.Invalid, "bad event id"
	}
	if v.verifier != nil && !ev.VerifySignature(v.verifier) {
		return reason.Invalid, "bad signature"
	}

	createdAt := time.Unix(ev.CreatedAt, 0)
	if v.cfg.MaxFutureDrift > 0 && createdAt.After(now.Add(v.cfg.MaxFutureDrift)) {
		return reason.Invalid, "event too far in future"
	}
	if v.cfg.MaxAge > 0 && createdAt.Before(now.Add(-v.cfg.MaxAge)) {
		return reason.Invalid, "event expired"
	}

	if exp, ok := ev.ExpirationAt(); ok && exp <= now.Unix() {
		return reason.Invalid, "event expired"
	}

	if v.cfg.MinPowDifficulty > 0 {
		if leadingZeroBits(ev.ID) < v.cfg.MinPowDifficulty {
			return reason.Pow, "insufficient proof of work difficulty"
		}
	}

	return reason.None, ""
}

// leadingZeroBits counts the number of leading zero bits in b, per NIP-13's
// difficulty definition.
func leadingZeroBits(b []byte) int {
	count := 0
	for _, by := range b {
		if by == 0 {
			count += 8
			continue
		}
		for mask := byte(0x80); mask > 0; mask >>= 1 {
			if by&mask != 0 {
				return count
			}
			count++
		}
	}
	return count
}
