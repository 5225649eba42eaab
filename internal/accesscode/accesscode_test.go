package accesscode

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "CNSL-0001", Normalize("cnsl-0001"))
	require.Equal(t, "NRB-1234", Normalize("  nrb-1234 "))
	require.Equal(t, "ADMIN-1234", Normalize("\tadmin-1234\n"))
	require.Equal(t, "", Normalize("   "))
}

func TestGenerate(t *testing.T) {
	pattern := regexp.MustCompile(`^NRB-\d{4}$`)
	for i := 0; i < 100; i++ {
		code := Generate(PrefixSchool)
		require.Regexp(t, pattern, code)
	}

	require.Regexp(t, regexp.MustCompile(`^CNSL-\d{4}$`), Generate(PrefixCounselor))
}
