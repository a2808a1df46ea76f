package story

import (
	"context"
	"fmt"
	"sync"

	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/progress"
)

type ProgressStore interface {
	Snapshot() domain.ProgressRecord
	SetCurrentChapter(ctx context.Context, chapterID string) (domain.ProgressRecord, error)
	ApplyChoice(ctx context.Context, outcome progress.ChoiceOutcome) (domain.ProgressRecord, error)
}

// View is what the player sees for a chapter. An unknown chapter yields NotFound,
// from which the only way forward is Restart.
type View struct {
	ChapterID string
	Node      domain.StoryNode
	NotFound  bool
	Terminal  bool
}

// Navigator walks the story graph for one player. The current position lives in the progress record.
type Navigator struct {
	graph *Graph
	store ProgressStore

	transition sync.Mutex
}

func NewNavigator(graph *Graph, store ProgressStore) *Navigator {
	return &Navigator{
		graph: graph,
		store: store,
	}
}

func (n *Navigator) view(chapterID string) View {
	node, ok := n.graph.Node(chapterID)
	if !ok {
		return View{ChapterID: chapterID, NotFound: true}
	}
	return View{
		ChapterID: chapterID,
		Node:      node,
		Terminal:  node.IsTerminal(),
	}
}

func (n *Navigator) Current() View {
	return n.view(n.store.Snapshot().CurrentChapter)
}

// Choose selects a choice of the chapter the player is looking at. fromChapterID must match
// the current chapter, so a repeated click on an already applied choice is rejected instead of
// rewarding twice.
func (n *Navigator) Choose(ctx context.Context, fromChapterID, choiceID string) (View, error) {
	if !n.transition.TryLock() {
		return View{}, domain.ErrTransitionInProgress
	}
	defer n.transition.Unlock()

	current := n.store.Snapshot().CurrentChapter
	if fromChapterID != current {
		return n.view(current), fmt.Errorf("%w: at %s, not %s", domain.ErrStaleChoice, current, fromChapterID)
	}

	node, ok := n.graph.Node(current)
	if !ok {
		return n.view(current), fmt.Errorf("%w: %s", domain.ErrChapterNotFound, current)
	}

	choice, ok := node.FindChoice(choiceID)
	if !ok {
		return n.view(current), fmt.Errorf("%w: %s/%s", domain.ErrChoiceNotFound, current, choiceID)
	}

	outcome := progress.ChoiceOutcome{
		Reward:        choice.Reward,
		NextChapterID: choice.NextChapterID,
	}
	if next, ok := n.graph.Node(choice.NextChapterID); ok && next.IsTerminal() {
		outcome.CompletedPath = next.ID
	}

	record, err := n.store.ApplyChoice(ctx, outcome)
	if err != nil {
		return n.view(current), fmt.Errorf("failed to apply choice: %w", err)
	}

	return n.view(record.CurrentChapter), nil
}

// GoTo jumps directly to a chapter. Unknown chapters produce a NotFound view and leave the
// position untouched.
func (n *Navigator) GoTo(ctx context.Context, chapterID string) (View, error) {
	if !n.transition.TryLock() {
		return View{}, domain.ErrTransitionInProgress
	}
	defer n.transition.Unlock()

	if _, ok := n.graph.Node(chapterID); !ok {
		return n.view(chapterID), nil
	}

	record, err := n.store.SetCurrentChapter(ctx, chapterID)
	if err != nil {
		return n.view(n.store.Snapshot().CurrentChapter), fmt.Errorf("failed to set chapter: %w", err)
	}
	return n.view(record.CurrentChapter), nil
}

// Restart returns to the start node. Only the narrative position moves; xp and collections are kept.
func (n *Navigator) Restart(ctx context.Context) (View, error) {
	if !n.transition.TryLock() {
		return View{}, domain.ErrTransitionInProgress
	}
	defer n.transition.Unlock()

	record, err := n.store.SetCurrentChapter(ctx, n.graph.Start())
	if err != nil {
		return n.view(n.store.Snapshot().CurrentChapter), fmt.Errorf("failed to restart story: %w", err)
	}
	return n.view(record.CurrentChapter), nil
}
