package server

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/justmike2000/item-wars/internal/game"
	"github.com/justmike2000/item-wars/internal/protocol"
	"github.com/justmike2000/item-wars/internal/registry"
)

// Dispatcher resolves one decoded request against the session registry and
// produces the response payload. It has no knowledge of sockets; the serve
// loop owns transport concerns and calls Dispatch once per packet, which
// keeps every registry mutation serialized.
type Dispatcher struct {
	Registry *registry.Registry
	Logger   *logrus.Logger
}

// Dispatch maps a request to its response payload. Every outcome, including
// unknown commands and invalid session references, resolves to a payload;
// Dispatch never fails and never panics on bad input.
func (d *Dispatcher) Dispatch(req protocol.Request) interface{} {
	cmd, err := protocol.ParseCommand(req)
	if err != nil {
		d.Logger.Debugf("rejecting request: %v", err)
		return protocol.ErrorResponse{Error: protocol.ErrorInvalidCommand}
	}

	switch c := cmd.(type) {
	case protocol.NewGame:
		return d.handleNewGame()
	case protocol.ListGames:
		return d.handleListGames()
	case protocol.JoinGame:
		return d.handleJoinGame(c)
	case protocol.GameInfo:
		return d.handleGameInfo(c)
	case protocol.SendPosition:
		return d.handleSendPosition(c)
	case protocol.GetWorld:
		return d.handleGetWorld(c)
	default:
		// ParseCommand only emits the variants above; this is unreachable
		// unless a new command is added without a handler.
		d.Logger.Warnf("no handler for command %q", req.Command)
		return protocol.ErrorResponse{Error: protocol.ErrorInvalidCommand}
	}
}

func (d *Dispatcher) handleNewGame() interface{} {
	g := d.Registry.CreateGame()
	d.Logger.Infof("created game %s", g.ID)
	return protocol.NewGameResponse{GameID: g.ID}
}

func (d *Dispatcher) handleListGames() interface{} {
	open := d.Registry.ListOpen()
	resp := protocol.ListGamesResponse{Games: make([]protocol.GameSummary, 0, len(open))}
	for _, g := range open {
		resp.Games = append(resp.Games, protocol.GameSummary{ID: g.ID, Players: g.PlayerCount()})
	}
	return resp
}

func (d *Dispatcher) handleJoinGame(c protocol.JoinGame) interface{} {
	g, err := d.Registry.Join(c.GameID, c.Name)
	switch {
	case errors.Is(err, registry.ErrInvalidGame):
		return protocol.ErrorResponse{Error: protocol.InvalidGameError(c.GameID)}
	case errors.Is(err, game.ErrGameFull):
		return protocol.ErrorResponse{Error: protocol.GameFullError(c.GameID)}
	case errors.Is(err, game.ErrNameTaken):
		return protocol.ErrorResponse{Error: protocol.NameTakenError(c.Name, c.GameID)}
	case err != nil:
		d.Logger.Errorf("join %s failed: %v", c.GameID, err)
		return protocol.ErrorResponse{Error: protocol.ErrorInvalidCommand}
	}

	d.Logger.Infof("player %s joined game %s (%d players)", c.Name, g.ID, g.PlayerCount())
	return protocol.JoinResponse{Info: protocol.JoinInfo(g.Started, g.ID, g.PlayerCount())}
}

func (d *Dispatcher) handleGameInfo(c protocol.GameInfo) interface{} {
	g := d.Registry.Find(c.GameID)
	if g == nil {
		return protocol.ErrorResponse{Error: protocol.InvalidGameError(c.GameID)}
	}
	return protocol.GameInfoResponse{Game: protocol.GameSummary{ID: g.ID, Players: g.PlayerCount()}}
}

func (d *Dispatcher) handleSendPosition(c protocol.SendPosition) interface{} {
	g, err := d.Registry.ReplacePlayer(c.GameID, c.Name, c.Player)
	if err != nil {
		return protocol.ErrorResponse{Error: protocol.InvalidGameError(c.GameID)}
	}
	return g
}

func (d *Dispatcher) handleGetWorld(c protocol.GetWorld) interface{} {
	g := d.Registry.Find(c.GameID)
	if g == nil {
		return protocol.ErrorResponse{Error: protocol.InvalidGameError(c.GameID)}
	}
	return g
}
