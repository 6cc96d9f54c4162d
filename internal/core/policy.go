package core

import (
	"time"
)

// Decide is the single freshness rule for every cached resource type. It is
// a pure function of the stored entry, the current time and the requested
// mode; TTLs are baked into entry.ExpiresAt at write time, so the rule
// itself is TTL-agnostic.
//
//	entry      mode                     result
//	none       any                      miss
//	fresh      normal / allow-stale     fresh
//	fresh      force-refresh            miss
//	expired    normal / force-refresh   miss
//	expired    allow-stale              stale (with age)
func Decide(entry *CacheEntry, now time.Time, mode LookupMode) Result {
	if entry == nil {
		return Result{Outcome: OutcomeMiss}
	}

	if !entry.Expired(now) {
		if mode == ModeForceRefresh {
			return Result{Outcome: OutcomeMiss}
		}
		return Result{
			Outcome: OutcomeFresh,
			Payload: entry.Payload,
			Status:  entry.Status,
		}
	}

	if mode != ModeAllowStale {
		return Result{Outcome: OutcomeMiss}
	}

	// A negative entry has nothing worth serving past its TTL.
	if entry.Status == StatusFailed {
		return Result{Outcome: OutcomeMiss}
	}

	return Result{
		Outcome: OutcomeStale,
		Payload: entry.Payload,
		Status:  entry.Status,
		Age:     now.Sub(entry.WrittenAt),
	}
}
