// Package store provides the persistent EntryStore implementations: SQLite
// for single-node deployments, MySQL for shared ones, and an in-memory map
// for tests and cache-disabled development. All three keep one row per
// fingerprint in one table per resource type, and none of them interprets
// freshness — that is the policy's job.
package store

import (
	"fmt"
	"regexp"
)

var resourceNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// tableName maps a resource type to its backing table. Resource names feed
// straight into DDL, so they are restricted to a safe identifier subset.
func tableName(resource string) (string, error) {
	if !resourceNameRe.MatchString(resource) {
		return "", fmt.Errorf("invalid resource name %q", resource)
	}
	return "cache_" + resource, nil
}
