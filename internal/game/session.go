package game

import (
	"errors"

	"github.com/google/uuid"
)

// MaxPlayers is the fixed session capacity. Reaching it starts the match.
const MaxPlayers = 2

var (
	// ErrGameFull is returned when a join would exceed the session capacity.
	ErrGameFull = errors.New("game is full")
	// ErrNameTaken is returned when a joining player's name collides with a
	// player already in the session. Names are the replacement key, so a
	// session never holds two players with the same name.
	ErrNameTaken = errors.New("name already taken")
)

// Spawn positions by join order, spread out so the two players do not start
// stacked on top of each other.
var spawnPoints = [MaxPlayers]Rect{
	{X: 100, Y: 100, W: PlayerWidth, H: PlayerHeight},
	{X: 480, Y: 340, W: PlayerWidth, H: PlayerHeight},
}

// NetworkedGame is one hosted match: an id, the joined players in join order,
// and the lifecycle flags. The registry owns every instance; clients only
// ever hold decoded copies.
type NetworkedGame struct {
	ID        string    `json:"id"`
	Players   []*Player `json:"players"`
	Started   bool      `json:"started"`
	Completed bool      `json:"completed"`
}

// NewNetworkedGame returns an empty, unstarted session with a fresh unique id.
func NewNetworkedGame() *NetworkedGame {
	return &NetworkedGame{
		ID:      uuid.New().String(),
		Players: make([]*Player, 0, MaxPlayers),
	}
}

// AddPlayer appends a new player with the given name, spawned according to
// its join order. The session starts the instant it reaches capacity and the
// Started flag never reverts.
func (g *NetworkedGame) AddPlayer(name string) (*Player, error) {
	if len(g.Players) >= MaxPlayers {
		return nil, ErrGameFull
	}
	if g.FindPlayer(name) != nil {
		return nil, ErrNameTaken
	}

	p := NewPlayer(name)
	p.Body = spawnPoints[len(g.Players)]
	g.Players = append(g.Players, p)

	if len(g.Players) == MaxPlayers {
		g.Started = true
	}
	return p, nil
}

// FindPlayer returns the first player with the given name, or nil.
func (g *NetworkedGame) FindPlayer(name string) *Player {
	for _, p := range g.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// ReplacePlayer overwrites the record of the first player matching name with
// the submitted one. A name with no match is a no-op, not an error; the
// caller returns the session unchanged either way.
func (g *NetworkedGame) ReplacePlayer(name string, record *Player) bool {
	for i, p := range g.Players {
		if p.Name == name {
			g.Players[i] = record
			return true
		}
	}
	return false
}

// PlayerCount returns the number of joined players.
func (g *NetworkedGame) PlayerCount() int {
	return len(g.Players)
}
