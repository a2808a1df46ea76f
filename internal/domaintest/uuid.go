package domaintest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewUUID returns a fresh player id in normalized form
func NewUUID(t *testing.T) string {
	t.Helper()

	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}
