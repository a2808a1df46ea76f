package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anki0476/rigveda-explorer/internal/achievements"
	"github.com/anki0476/rigveda-explorer/internal/adapters/cache"
	"github.com/anki0476/rigveda-explorer/internal/domain"
	"github.com/anki0476/rigveda-explorer/internal/notifications"
	"github.com/anki0476/rigveda-explorer/internal/progress"
	"github.com/anki0476/rigveda-explorer/internal/story"
	"github.com/anki0476/rigveda-explorer/internal/strutils"
)

// Session bundles everything a single player interacts with
type Session struct {
	PlayerID      string
	Store         *progress.Store
	Navigator     *story.Navigator
	Notifications *notifications.Dispatcher

	closeOnce sync.Once
	release   func()
}

// Close stops the store from writing, stops the notification timers and ends all
// notification streams. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Store.Close()
		s.Notifications.Close()
		if s.release != nil {
			s.release()
		}
	})
}

// liveSessions tracks the one open session per player, including sessions already dropped
// from the cache whose eviction has not closed them yet
type liveSessions struct {
	mu       sync.Mutex
	byPlayer map[string]*Session
}

// retire closes the player's previous session, if any. Closing waits for its running
// transaction, so a replacement loads whatever that transaction saved.
func (l *liveSessions) retire(playerID string) {
	l.mu.Lock()
	previous, ok := l.byPlayer[playerID]
	delete(l.byPlayer, playerID)
	l.mu.Unlock()

	if ok {
		previous.Close()
	}
}

func (l *liveSessions) add(session *Session) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.byPlayer[session.PlayerID] = session
	session.release = func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		if l.byPlayer[session.PlayerID] == session {
			delete(l.byPlayer, session.PlayerID)
		}
	}
}

type GetSession func(ctx context.Context, playerID string) (*Session, error)

func BuildGetSession(
	sessionCache cache.Cache[*Session],
	persistence progress.Persistence,
	rulebook *achievements.Rulebook,
	graph *story.Graph,
	durations notifications.Durations,
	nowFunc func() time.Time,
) GetSession {
	live := &liveSessions{byPlayer: make(map[string]*Session)}

	return func(ctx context.Context, playerID string) (*Session, error) {
		if !strutils.UUIDIsNormalized(playerID) {
			return nil, fmt.Errorf("%w: player id is not normalized", domain.ErrInvalidIdentifier)
		}

		session, _, err := cache.GetOrCreate(ctx, sessionCache, playerID, func() (*Session, error) {
			live.retire(playerID)

			dispatcher := notifications.NewDispatcher(durations, nowFunc)
			store := progress.NewStore(ctx, playerID, persistence, dispatcher, rulebook, graph.Start(), nowFunc)
			session := &Session{
				PlayerID:      playerID,
				Store:         store,
				Navigator:     story.NewNavigator(graph, store),
				Notifications: dispatcher,
			}
			live.add(session)
			return session, nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get session: %w", err)
		}

		return session, nil
	}
}
