// Package protocol defines the textual command protocol spoken between the
// game server and its clients: one JSON request envelope per datagram in,
// one JSON response object per datagram out. Response shapes vary by
// command, so callers branch on the command they issued rather than on the
// shape of the reply.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Command names accepted by the server. Anything else earns ErrorInvalidCommand.
const (
	CmdNewGame      = "newgame"
	CmdListGames    = "listgames"
	CmdJoinGame     = "joingame"
	CmdGameInfo     = "gameinfo"
	CmdSendPosition = "sendposition"
	CmdGetWorld     = "getworld"
)

// Request is the wire envelope common to every command. Unused fields are
// empty; Meta carries a nested JSON-encoded player record and is only set
// for sendposition.
type Request struct {
	Command string `json:"command"`
	GameID  string `json:"game_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Meta    string `json:"meta,omitempty"`
}

// ErrorResponse is the single structured failure shape. Any response carrying
// a non-empty error field is a failure regardless of the command issued.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewGameResponse carries the id of a freshly created session.
type NewGameResponse struct {
	GameID string `json:"game_id"`
}

// JoinResponse carries the human-readable join status line.
type JoinResponse struct {
	Info string `json:"info"`
}

// ListGamesResponse lists every session still waiting for players.
type ListGamesResponse struct {
	Games []GameSummary `json:"games"`
}

// GameInfoResponse describes a single session.
type GameInfoResponse struct {
	Game GameSummary `json:"game"`
}

// GameSummary is the (id, player count) pair used by listgames and gameinfo.
// On the wire it is a two element array, not an object.
type GameSummary struct {
	ID      string
	Players int
}

func (s GameSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{s.ID, s.Players})
}

func (s *GameSummary) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("game summary is not a pair: %w", err)
	}
	if err := json.Unmarshal(pair[0], &s.ID); err != nil {
		return fmt.Errorf("game summary id: %w", err)
	}
	if err := json.Unmarshal(pair[1], &s.Players); err != nil {
		return fmt.Errorf("game summary player count: %w", err)
	}
	return nil
}

// ErrorInvalidCommand is the reply to any unrecognized or malformed command.
const ErrorInvalidCommand = "Invalid Command"

// InvalidGameError formats the reply for a game_id with no live session.
func InvalidGameError(id string) string {
	return fmt.Sprintf("Invalid Game %s", id)
}

// GameFullError formats the reply for a join against a full session.
func GameFullError(id string) string {
	return fmt.Sprintf("game %s is full", id)
}

// NameTakenError formats the reply for a join reusing a name already present
// in the session.
func NameTakenError(name, id string) string {
	return fmt.Sprintf("name %s already taken in game %s", name, id)
}

// JoinInfo formats the join status line, e.g.
// "joined not started game 4f7c... with 1 players".
func JoinInfo(started bool, id string, players int) string {
	state := "not started"
	if started {
		state = "started"
	}
	return fmt.Sprintf("joined %s game %s with %d players", state, id, players)
}
