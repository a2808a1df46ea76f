package progressrepository_test

import (
	"testing"

	"github.com/anki0476/rigveda-explorer/internal/adapters/progressrepository"
)

func TestMemoryProgressRepository(t *testing.T) {
	t.Parallel()

	runRepositoryTests(t, func(t *testing.T) repository {
		return progressrepository.NewMemoryProgressRepository()
	})
}
