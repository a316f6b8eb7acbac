// Package client implements the player side of the command protocol: typed
// request/reply calls over UDP plus the synchronization loop that keeps a
// local simulation and the hosted session in agreement.
package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/justmike2000/item-wars/internal/game"
	"github.com/justmike2000/item-wars/internal/protocol"
)

// DefaultReplyTimeout bounds how long a call waits for the server before
// giving up. A lost datagram would otherwise block the caller forever.
const DefaultReplyTimeout = 250 * time.Millisecond

const maxReplySize = 2048

// Conn issues commands to a game server. Each call binds a fresh ephemeral
// UDP socket, sends one request, and waits for at most the reply timeout;
// there is no connection state to share, so a Conn is safe wherever copies
// of its fields are.
type Conn struct {
	addr    *net.UDPAddr
	timeout time.Duration
}

// NewConn resolves the server address once up front. A non-positive timeout
// falls back to DefaultReplyTimeout rather than waiting forever.
func NewConn(serverAddress string, replyTimeout time.Duration) (*Conn, error) {
	addr, err := net.ResolveUDPAddr("udp4", serverAddress)
	if err != nil {
		return nil, fmt.Errorf("resolving server address %s: %w", serverAddress, err)
	}
	if replyTimeout <= 0 {
		replyTimeout = DefaultReplyTimeout
	}
	return &Conn{addr: addr, timeout: replyTimeout}, nil
}

// NewGame asks the server to host a fresh session and returns its id.
func (c *Conn) NewGame(ctx context.Context) (string, error) {
	body, err := c.roundTrip(ctx, protocol.Request{Command: protocol.CmdNewGame})
	if err != nil {
		return "", err
	}
	resp, err := protocol.DecodeNewGame(body)
	if err != nil {
		return "", err
	}
	return resp.GameID, nil
}

// ListGames returns the joinable sessions the server is hosting.
func (c *Conn) ListGames(ctx context.Context) ([]protocol.GameSummary, error) {
	body, err := c.roundTrip(ctx, protocol.Request{Command: protocol.CmdListGames})
	if err != nil {
		return nil, err
	}
	resp, err := protocol.DecodeListGames(body)
	if err != nil {
		return nil, err
	}
	return resp.Games, nil
}

// JoinGame enters the named player into a session and returns the server's
// status line. Full sessions, unknown ids, and name collisions come back as
// *protocol.ServerError.
func (c *Conn) JoinGame(ctx context.Context, gameID, name string) (string, error) {
	body, err := c.roundTrip(ctx, protocol.Request{
		Command: protocol.CmdJoinGame,
		GameID:  gameID,
		Name:    name,
	})
	if err != nil {
		return "", err
	}
	resp, err := protocol.DecodeJoin(body)
	if err != nil {
		return "", err
	}
	return resp.Info, nil
}

// GameInfo returns the id and player count of one session.
func (c *Conn) GameInfo(ctx context.Context, gameID string) (protocol.GameSummary, error) {
	body, err := c.roundTrip(ctx, protocol.Request{
		Command: protocol.CmdGameInfo,
		GameID:  gameID,
	})
	if err != nil {
		return protocol.GameSummary{}, err
	}
	resp, err := protocol.DecodeGameInfo(body)
	if err != nil {
		return protocol.GameSummary{}, err
	}
	return resp.Game, nil
}

// SendPosition publishes the local player record to its session and returns
// the server's view of the whole session.
func (c *Conn) SendPosition(ctx context.Context, gameID string, player *game.Player) (*game.NetworkedGame, error) {
	meta, err := protocol.EncodePlayerMeta(player)
	if err != nil {
		return nil, err
	}
	body, err := c.roundTrip(ctx, protocol.Request{
		Command: protocol.CmdSendPosition,
		GameID:  gameID,
		Name:    player.Name,
		Meta:    meta,
	})
	if err != nil {
		return nil, err
	}
	return protocol.DecodeSession(body)
}

// GetWorld fetches the authoritative session state.
func (c *Conn) GetWorld(ctx context.Context, gameID string) (*game.NetworkedGame, error) {
	body, err := c.roundTrip(ctx, protocol.Request{
		Command: protocol.CmdGetWorld,
		GameID:  gameID,
	})
	if err != nil {
		return nil, err
	}
	return protocol.DecodeSession(body)
}

// roundTrip performs one request/reply exchange on a throwaway socket. The
// deadline is the sooner of the configured reply timeout and the context
// deadline, so a dropped reply costs one timeout, never a hang.
func (c *Conn) roundTrip(ctx context.Context, req protocol.Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := protocol.EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	socket, err := net.DialUDP("udp4", nil, c.addr)
	if err != nil {
		return nil, fmt.Errorf("dialing game server: %w", err)
	}
	defer socket.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := socket.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if _, err := socket.Write(payload); err != nil {
		return nil, fmt.Errorf("sending %s: %w", req.Command, err)
	}

	buffer := make([]byte, maxReplySize)
	n, err := socket.Read(buffer)
	if err != nil {
		return nil, fmt.Errorf("awaiting %s reply: %w", req.Command, err)
	}
	return buffer[:n], nil
}
