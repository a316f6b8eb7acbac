// Package registry holds the live sessions hosted by a game server process.
// The registry is owned by the serve loop and must only ever be touched from
// that goroutine; the loop's one-packet-at-a-time discipline is what makes
// every operation here safe without locks.
package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/justmike2000/item-wars/internal/game"
)

// ErrInvalidGame is returned by any operation referencing a game_id with no
// live session. Absence is an expected outcome, not a server fault.
var ErrInvalidGame = errors.New("invalid game")

// Registry is an ordered collection of sessions keyed by their generated ids.
// Sessions are appended in creation order and stay resident until the TTL
// sweep reaps them.
type Registry struct {
	games []*game.NetworkedGame

	// liveness tracks the last-touched TTL per session id. Nil when garbage
	// collection is disabled.
	liveness *expiryCache
	ttl      time.Duration
}

// New returns an empty registry. A positive ttl arms the garbage collector:
// sessions untouched for that long are removed by Sweep. A zero ttl disables
// collection and keeps every session for the life of the process.
func New(ttl time.Duration) *Registry {
	r := &Registry{ttl: ttl}
	if ttl > 0 {
		r.liveness = newExpiryCache()
	}
	return r
}

// CreateGame adds a fresh, empty, unstarted session and returns it. It never
// fails.
func (r *Registry) CreateGame() *game.NetworkedGame {
	g := game.NewNetworkedGame()
	r.games = append(r.games, g)
	r.touch(g.ID)
	return g
}

// Find returns the session with the given id, or nil when no such session
// exists. Finding a session refreshes its liveness.
func (r *Registry) Find(id string) *game.NetworkedGame {
	for _, g := range r.games {
		if g.ID == id {
			r.touch(id)
			return g
		}
	}
	return nil
}

// Join appends a new player to the session. The error is ErrInvalidGame for
// an unknown id, game.ErrGameFull at capacity, or game.ErrNameTaken when the
// name is already present in the session.
func (r *Registry) Join(id, name string) (*game.NetworkedGame, error) {
	g := r.Find(id)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGame, id)
	}
	if _, err := g.AddPlayer(name); err != nil {
		return nil, err
	}
	return g, nil
}

// ListOpen returns, in creation order, every session still waiting for
// players.
func (r *Registry) ListOpen() []*game.NetworkedGame {
	open := make([]*game.NetworkedGame, 0, len(r.games))
	for _, g := range r.games {
		if !g.Started {
			open = append(open, g)
		}
	}
	return open
}

// ReplacePlayer overwrites the named player's record in the session with the
// client-submitted one and returns the session. A name with no match leaves
// the session untouched but is still a success; only an unknown id is an
// error.
func (r *Registry) ReplacePlayer(id, name string, record *game.Player) (*game.NetworkedGame, error) {
	g := r.Find(id)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGame, id)
	}
	g.ReplacePlayer(name, record)
	return g, nil
}

// Len returns the number of resident sessions, reaped or not yet swept ones
// included.
func (r *Registry) Len() int {
	return len(r.games)
}

// touch refreshes the session's TTL entry. Every command that resolves a
// session counts as activity.
func (r *Registry) touch(id string) {
	if r.liveness == nil {
		return
	}
	r.liveness.Put(id, time.Now(), r.ttl)
}

// Sweep removes every session whose TTL entry has lapsed and returns them,
// marked completed, for archival. It must be called from the serve loop
// goroutine; the loop's idle wakeups are the intended call site.
func (r *Registry) Sweep() []*game.NetworkedGame {
	if r.liveness == nil || len(r.games) == 0 {
		return nil
	}

	var reaped []*game.NetworkedGame
	kept := r.games[:0]
	for _, g := range r.games {
		if _, alive := r.liveness.Get(g.ID); alive {
			kept = append(kept, g)
			continue
		}
		r.liveness.Delete(g.ID)
		g.Completed = true
		reaped = append(reaped, g)
	}
	r.games = kept
	return reaped
}
