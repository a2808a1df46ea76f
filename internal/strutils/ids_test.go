package strutils_test

import (
	"strings"
	"testing"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/strutils"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUUID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expected string
		valid    bool
	}{
		{
			// Regular dashed UUID
			input:    "01234567-89ab-cdef-0123-456789abcdef",
			expected: "01234567-89ab-cdef-0123-456789abcdef",
			valid:    true,
		},
		{
			// All caps dashed UUID
			input:    "01234567-89AB-CDEF-0123-456789ABCDEF",
			expected: "01234567-89ab-cdef-0123-456789abcdef",
			valid:    true,
		},
		{
			// Stripped UUID
			input:    "0123456789abcdef0123456789abcdef",
			expected: "01234567-89ab-cdef-0123-456789abcdef",
			valid:    true,
		},
		{
			// Surrounding whitespace
			input:    "  01234567-89ab-cdef-0123-456789abcdef\n",
			expected: "01234567-89ab-cdef-0123-456789abcdef",
			valid:    true,
		},
		{input: "", valid: false},
		{input: "not-a-uuid", valid: false},
		{input: "01234567-89ab-cdef-0123-456789abcdeg", valid: false},
		{input: "01234567-89ab-cdef-0123-456789abcdef0", valid: false},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			t.Parallel()

			normalized, err := strutils.NormalizeUUID(c.input)
			if !c.valid {
				require.ErrorIs(t, err, domain.ErrInvalidIdentifier)
				require.False(t, strutils.UUIDIsNormalized(c.input))
				return
			}

			require.NoError(t, err)
			require.Equal(t, c.expected, normalized)
			require.Equal(t, c.input == c.expected, strutils.UUIDIsNormalized(c.input))
		})
	}
}

func TestNormalizeContentID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expected string
		valid    bool
	}{
		{input: "agni", expected: "agni", valid: true},
		{input: "Agni", expected: "agni", valid: true},
		{input: " keeper_of_the_triad ", expected: "keeper_of_the_triad", valid: true},
		{input: "soma-pressing", expected: "soma-pressing", valid: true},
		{input: "", valid: false},
		{input: "   ", valid: false},
		{input: "agni altar", valid: false},
		{input: "../etc", valid: false},
		{input: "अग्नि", valid: false},
		{input: strings.Repeat("a", 65), valid: false},
	}

	for _, c := range cases {
		t.Run(c.input, func(t *testing.T) {
			t.Parallel()

			normalized, err := strutils.NormalizeContentID(c.input)
			if !c.valid {
				require.ErrorIs(t, err, domain.ErrInvalidIdentifier)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.expected, normalized)
		})
	}
}
