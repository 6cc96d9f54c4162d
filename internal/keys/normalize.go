package keys

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeDomain canonicalizes a free-form domain identifier: the scheme,
// a leading "www.", any path component and a trailing slash are stripped,
// and the remainder is lower-cased. The second return value is false when
// the input is empty or whitespace-only, which callers must treat as
// "absent" rather than as an empty key.
func NormalizeDomain(raw string) (string, bool) {
	s := canonicalize(raw)
	if s == "" {
		return "", false
	}
	return s, true
}

// NormalizeHandle canonicalizes a social handle. It applies the same
// pipeline as NormalizeDomain and additionally strips a leading "@".
func NormalizeHandle(raw string) (string, bool) {
	s := canonicalize(raw)
	// Stripping an "@" can expose another strippable prefix
	// ("@www.acme.com"), so re-canonicalize until stable.
	for {
		next := canonicalize(strings.TrimPrefix(s, "@"))
		if next == s {
			break
		}
		s = next
	}
	if s == "" {
		return "", false
	}
	return s, true
}

// canonicalize is idempotent: running it over its own output is a no-op.
func canonicalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	// Handles and domains pasted from profile pages can carry decomposed
	// unicode; fold to NFC before comparing anything.
	s = norm.NFC.String(s)

	// Strip to a fixpoint. Pasted identifiers stack prefixes
	// ("https://www.www.example.com"), and a single pass would return a
	// value that still changes under a second normalization. Prefixes
	// must be exhausted before the path cut, or a stacked scheme gets
	// truncated at its own "//".
	for {
		prev := s

		for {
			p := s
			s = strings.TrimPrefix(s, "http://")
			s = strings.TrimPrefix(s, "https://")
			s = strings.TrimPrefix(s, "www.")
			if s == p {
				break
			}
		}

		// Keep only the authority: users paste full URLs where a bare
		// domain is expected.
		if i := strings.IndexAny(s, "/?#"); i >= 0 {
			s = s[:i]
		}

		if s == prev {
			return s
		}
	}
}
