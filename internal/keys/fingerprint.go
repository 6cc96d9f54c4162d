package keys

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidInput is returned when a fingerprint cannot be built because a
// required identity component is missing after normalization.
var ErrInvalidInput = errors.New("invalid fingerprint input")

// Fingerprint is the composite cache key for one cached analysis: the owning
// subject, one or two normalized entities, and any discriminators. It is a
// deterministic printable string, stable across process restarts, and is
// used verbatim as the storage primary key.
type Fingerprint string

const (
	fingerprintVersion = "v1"
	fieldSep           = "\x1f"
	absentEntity       = "-"
)

// BuildFingerprint composes a Fingerprint from a subject identifier, a
// required primary entity (a domain), an optional secondary entity and
// optional named discriminators (social handles).
//
// Entities are normalized as domains and discriminators as handles before
// composition. Discriminators are ordered by name, so two maps with the same
// contents always produce the same fingerprint. An absent discriminator is
// omitted entirely: a fingerprint built with a discriminator never matches
// one built without it.
func BuildFingerprint(subjectID, primaryEntity, secondaryEntity string, discriminators map[string]string) (Fingerprint, error) {
	subject := strings.TrimSpace(subjectID)
	if subject == "" {
		return "", fmt.Errorf("%w: subject id is required", ErrInvalidInput)
	}

	primary, ok := NormalizeDomain(primaryEntity)
	if !ok {
		return "", fmt.Errorf("%w: primary entity is required", ErrInvalidInput)
	}

	secondary, ok := NormalizeDomain(secondaryEntity)
	if !ok {
		secondary = absentEntity
	}

	parts := []string{fingerprintVersion, subject, primary, secondary}

	names := make([]string, 0, len(discriminators))
	for name := range discriminators {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, ok := NormalizeHandle(discriminators[name])
		if !ok {
			continue
		}
		parts = append(parts, name+"="+value)
	}

	return Fingerprint(strings.Join(parts, fieldSep)), nil
}

// String returns the fingerprint as a plain string.
func (f Fingerprint) String() string {
	return string(f)
}
