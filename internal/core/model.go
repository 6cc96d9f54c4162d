package core

import (
	"time"
)

// EntryStatus records the outcome of the upstream fetch that produced an
// entry.
type EntryStatus string

const (
	// StatusComplete marks an entry holding a real provider payload.
	StatusComplete EntryStatus = "complete"
	// StatusFailed marks a negative entry written after a failed provider
	// fetch, so repeated requests don't hammer a provider that just
	// rejected us. It carries no payload.
	StatusFailed EntryStatus = "failed"
)

// CacheEntry is one cached provider result, keyed by fingerprint. The
// payload is an opaque serialized blob; the cache never interprets it.
type CacheEntry struct {
	Fingerprint string
	Payload     []byte
	Status      EntryStatus
	WrittenAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the entry's TTL has passed at the given instant.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// LookupMode selects how the freshness policy treats an existing entry.
type LookupMode int

const (
	// ModeNormal serves fresh entries and misses on everything else.
	ModeNormal LookupMode = iota
	// ModeForceRefresh misses even on fresh entries; used when the user
	// explicitly asked for live data.
	ModeForceRefresh
	// ModeAllowStale serves expired entries, labeled stale, as a fallback
	// after an upstream fetch has failed.
	ModeAllowStale
)

func (m LookupMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeForceRefresh:
		return "force_refresh"
	case ModeAllowStale:
		return "allow_stale"
	default:
		return "unknown"
	}
}

// Outcome is the variant of a lookup result.
type Outcome int

const (
	// OutcomeMiss means no usable entry exists; the caller must fetch
	// from the provider.
	OutcomeMiss Outcome = iota
	// OutcomeFresh means the entry is within its TTL.
	OutcomeFresh
	// OutcomeStale means an expired entry was served under ModeAllowStale.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFresh:
		return "fresh"
	case OutcomeStale:
		return "stale"
	default:
		return "miss"
	}
}

// Result is the outcome of a cache lookup. Age is populated only for stale
// results and tells the caller how old the served payload is, so the UI can
// annotate "showing cached data from N hours ago". Status distinguishes a
// real payload from a negative entry.
type Result struct {
	Outcome Outcome
	Payload []byte
	Status  EntryStatus
	Age     time.Duration
}

// Miss reports whether the caller has to fetch live data.
func (r Result) Miss() bool { return r.Outcome == OutcomeMiss }

// Fresh reports whether the payload is within its TTL.
func (r Result) Fresh() bool { return r.Outcome == OutcomeFresh }

// Stale reports whether an expired payload was served as a fallback.
func (r Result) Stale() bool { return r.Outcome == OutcomeStale }
