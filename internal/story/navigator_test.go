package story_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/achievements"
	"github.com/anki0476/rigveda-explorer/internal/adapters/progressrepository"
	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/progress"
	"github.com/anki0476/rigveda-explorer/internal/story"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopPublisher struct {
	mu    sync.Mutex
	count int
}

func (p *nopPublisher) Publish(domain.Notification) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return ""
}

func newNavigator(t *testing.T, g *story.Graph) (*story.Navigator, *progress.Store) {
	t.Helper()

	store := progress.NewStore(
		t.Context(),
		"player",
		progressrepository.NewMemoryProgressRepository(),
		&nopPublisher{},
		achievements.DefaultRulebook(),
		g.Start(),
		time.Now,
	)
	return story.NewNavigator(g, store), store
}

func TestChoose(t *testing.T) {
	t.Parallel()

	t.Run("moves to the next chapter and applies the reward", func(t *testing.T) {
		t.Parallel()

		nav, store := newNavigator(t, story.DefaultGraph())

		require.Equal(t, "prologue", nav.Current().ChapterID)

		view, err := nav.Choose(t.Context(), "prologue", "kindle-fire")
		require.NoError(t, err)
		require.Equal(t, "agni-altar", view.ChapterID)
		require.False(t, view.NotFound)
		require.False(t, view.Terminal)
		require.Equal(t, "The Altar of Agni", view.Node.Title)

		record := store.Snapshot()
		require.Equal(t, "agni-altar", record.CurrentChapter)
		require.Equal(t, []string{"prologue", "agni-altar"}, record.StoryPath)
		require.Equal(t, []string{"agni"}, record.CollectedDeities)
		// 20 from the choice, 25 from first_offering
		require.Equal(t, 45, record.XP)
	})

	t.Run("repeated click does not reward twice", func(t *testing.T) {
		t.Parallel()

		nav, store := newNavigator(t, story.DefaultGraph())

		_, err := nav.Choose(t.Context(), "prologue", "kindle-fire")
		require.NoError(t, err)
		before := store.Snapshot()

		view, err := nav.Choose(t.Context(), "prologue", "kindle-fire")
		require.ErrorIs(t, err, domain.ErrStaleChoice)
		require.Equal(t, "agni-altar", view.ChapterID)
		require.Equal(t, before, store.Snapshot())
	})

	t.Run("concurrent clicks land exactly once", func(t *testing.T) {
		t.Parallel()

		nav, store := newNavigator(t, story.DefaultGraph())

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := nav.Choose(context.Background(), "prologue", "hear-thunder")
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
					return
				}
				assert.True(t,
					errors.Is(err, domain.ErrStaleChoice) || errors.Is(err, domain.ErrTransitionInProgress),
					"unexpected error %v", err,
				)
			}()
		}
		wg.Wait()

		require.Equal(t, 1, succeeded)
		record := store.Snapshot()
		require.Equal(t, []string{"prologue", "indra-battle"}, record.StoryPath)
		require.Equal(t, []string{"indra"}, record.CollectedDeities)
	})

	t.Run("unknown choice", func(t *testing.T) {
		t.Parallel()

		nav, _ := newNavigator(t, story.DefaultGraph())
		_, err := nav.Choose(t.Context(), "prologue", "dance")
		require.ErrorIs(t, err, domain.ErrChoiceNotFound)
	})

	t.Run("terminal chapter completes the path", func(t *testing.T) {
		t.Parallel()

		nav, store := newNavigator(t, story.DefaultGraph())
		ctx := t.Context()

		steps := []struct{ from, choice string }{
			{"prologue", "hear-thunder"},
			{"indra-battle", "seek-order"},
			{"varuna-order", "wonder"},
		}
		var view story.View
		for _, step := range steps {
			var err error
			view, err = nav.Choose(ctx, step.from, step.choice)
			require.NoError(t, err)
		}

		require.Equal(t, "nasadiya", view.ChapterID)
		require.True(t, view.Terminal)

		record := store.Snapshot()
		require.Equal(t, []string{"nasadiya"}, record.CompletedPaths)
		require.Contains(t, record.Achievements, "path_walker")
		require.Contains(t, record.Achievements, "hymn_of_creation")
	})

	t.Run("dangling reference yields not found", func(t *testing.T) {
		t.Parallel()

		g, err := story.LoadGraph([]byte(`{
			"start": "prologue",
			"nodes": [{"id": "prologue", "choices": [{"id": "void", "nextChapterId": "lost", "reward": {"xp": 5}}]}]
		}`))
		require.NoError(t, err)

		nav, store := newNavigator(t, g)

		view, err := nav.Choose(t.Context(), "prologue", "void")
		require.NoError(t, err)
		require.True(t, view.NotFound)
		require.Equal(t, "lost", view.ChapterID)
		require.True(t, nav.Current().NotFound)
		require.Equal(t, 5, store.Snapshot().XP)

		// From a missing chapter there are no choices to make, only a restart
		_, err = nav.Choose(t.Context(), "lost", "anything")
		require.ErrorIs(t, err, domain.ErrChapterNotFound)

		view, err = nav.Restart(t.Context())
		require.NoError(t, err)
		require.Equal(t, "prologue", view.ChapterID)
		require.False(t, view.NotFound)
	})
}

func TestGoTo(t *testing.T) {
	t.Parallel()

	t.Run("known chapter", func(t *testing.T) {
		t.Parallel()

		nav, store := newNavigator(t, story.DefaultGraph())

		view, err := nav.GoTo(t.Context(), "dawn-hymn")
		require.NoError(t, err)
		require.Equal(t, "dawn-hymn", view.ChapterID)
		require.Equal(t, []string{"prologue", "dawn-hymn"}, store.Snapshot().StoryPath)
		// Jumping does not grant choice rewards
		require.Empty(t, store.Snapshot().CollectedDeities)
	})

	t.Run("unknown chapter is a not found view", func(t *testing.T) {
		t.Parallel()

		nav, store := newNavigator(t, story.DefaultGraph())

		view, err := nav.GoTo(t.Context(), "atlantis")
		require.NoError(t, err)
		require.True(t, view.NotFound)
		require.Equal(t, "atlantis", view.ChapterID)
		require.Equal(t, "prologue", store.Snapshot().CurrentChapter)
	})
}

func TestRestart(t *testing.T) {
	t.Parallel()

	nav, store := newNavigator(t, story.DefaultGraph())
	ctx := t.Context()

	_, err := nav.Choose(ctx, "prologue", "kindle-fire")
	require.NoError(t, err)
	_, err = nav.Choose(ctx, "agni-altar", "press-soma")
	require.NoError(t, err)
	before := store.Snapshot()

	view, err := nav.Restart(ctx)
	require.NoError(t, err)
	require.Equal(t, "prologue", view.ChapterID)

	after := store.Snapshot()
	require.Equal(t, "prologue", after.CurrentChapter)
	// History keeps growing; xp and collections are untouched
	require.Equal(t, append(before.StoryPath, "prologue"), after.StoryPath)
	require.Equal(t, before.Level, after.Level)
	require.Equal(t, before.XP, after.XP)
	require.Equal(t, before.CollectedDeities, after.CollectedDeities)
	require.Equal(t, before.Achievements, after.Achievements)

	// Revisiting the same node appends it again
	_, err = nav.Choose(ctx, "prologue", "kindle-fire")
	require.NoError(t, err)
	require.Equal(t,
		[]string{"prologue", "agni-altar", "soma-pressing", "prologue", "agni-altar"},
		store.Snapshot().StoryPath,
	)
}

func TestCustomStartChapter(t *testing.T) {
	t.Parallel()

	g, err := story.LoadGraph([]byte(`{
		"start": "intro",
		"nodes": [
			{"id": "intro", "title": "Before the Dawn", "choices": [{"id": "go", "nextChapterId": "river", "reward": {"xp": 10}}]},
			{"id": "river", "title": "The Sarasvati"}
		]
	}`))
	require.NoError(t, err)

	nav, store := newNavigator(t, g)
	ctx := t.Context()

	view := nav.Current()
	require.Equal(t, "intro", view.ChapterID)
	require.False(t, view.NotFound)

	view, err = nav.Choose(ctx, "intro", "go")
	require.NoError(t, err)
	require.Equal(t, "river", view.ChapterID)
	require.True(t, view.Terminal)
	require.Equal(t, []string{"intro", "river"}, store.Snapshot().StoryPath)

	_, err = store.ResetProgress(ctx)
	require.NoError(t, err)
	require.Equal(t, "intro", nav.Current().ChapterID)
}
