package protocol

import (
	"errors"
	"fmt"

	"github.com/justmike2000/item-wars/internal/game"
)

// ErrMalformedCommand reports an envelope whose command is unknown or whose
// required fields are missing or undecodable. The server answers these with
// ErrorInvalidCommand rather than guessing at intent.
var ErrMalformedCommand = errors.New("malformed command")

// Command is the decoded, per-command view of a request envelope. Each
// variant carries exactly the fields its command needs.
type Command interface {
	command() string
}

type NewGame struct{}

type ListGames struct{}

type JoinGame struct {
	GameID string
	Name   string
}

type GameInfo struct {
	GameID string
}

type SendPosition struct {
	GameID string
	Name   string
	Player *game.Player
}

type GetWorld struct {
	GameID string
}

func (NewGame) command() string      { return CmdNewGame }
func (ListGames) command() string    { return CmdListGames }
func (JoinGame) command() string     { return CmdJoinGame }
func (GameInfo) command() string     { return CmdGameInfo }
func (SendPosition) command() string { return CmdSendPosition }
func (GetWorld) command() string     { return CmdGetWorld }

// ParseCommand converts a decoded envelope into its command variant,
// validating that every required field is present. sendposition's nested
// player record is decoded here so the dispatcher only ever sees well formed
// commands.
func ParseCommand(req Request) (Command, error) {
	switch req.Command {
	case CmdNewGame:
		return NewGame{}, nil
	case CmdListGames:
		return ListGames{}, nil
	case CmdJoinGame:
		if req.GameID == "" || req.Name == "" {
			return nil, fmt.Errorf("%w: joingame requires game_id and name", ErrMalformedCommand)
		}
		return JoinGame{GameID: req.GameID, Name: req.Name}, nil
	case CmdGameInfo:
		if req.GameID == "" {
			return nil, fmt.Errorf("%w: gameinfo requires game_id", ErrMalformedCommand)
		}
		return GameInfo{GameID: req.GameID}, nil
	case CmdSendPosition:
		if req.GameID == "" || req.Name == "" || req.Meta == "" {
			return nil, fmt.Errorf("%w: sendposition requires game_id, name and meta", ErrMalformedCommand)
		}
		player, err := DecodePlayerMeta(req.Meta)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		return SendPosition{GameID: req.GameID, Name: req.Name, Player: player}, nil
	case CmdGetWorld:
		if req.GameID == "" {
			return nil, fmt.Errorf("%w: getworld requires game_id", ErrMalformedCommand)
		}
		return GetWorld{GameID: req.GameID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown command %q", ErrMalformedCommand, req.Command)
	}
}
