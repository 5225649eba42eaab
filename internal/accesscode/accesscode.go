// Package accesscode handles the access-code conventions: normalization
// before lookup and generation of new codes on approval.
package accesscode

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	PrefixCounselor = "CNSL-"
	PrefixSchool    = "NRB-"

	// LegacyAdminCode works even when no admins table row and no
	// ADMIN_CODE override exist. Kept for operator bootstrap.
	LegacyAdminCode = "ADMIN-1234"
)

// Normalize prepares a raw code for comparison: codes are case-insensitive
// and surrounding whitespace is ignored.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Generate returns prefix + a random 4-digit suffix, e.g. "NRB-4821".
// Uniqueness is not checked against existing codes; the store's unique
// constraint is the only guard.
func Generate(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, 1000+rand.IntN(9000))
}
