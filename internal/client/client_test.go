package client

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/justmike2000/item-wars/internal/core"
	"github.com/justmike2000/item-wars/internal/game"
	"github.com/justmike2000/item-wars/internal/protocol"
	"github.com/justmike2000/item-wars/internal/registry"
	"github.com/justmike2000/item-wars/internal/server"
)

const testReplyTimeout = 500 * time.Millisecond

// startGameServer serves a real game server on a loopback socket with an
// OS-chosen port and tears it down with the test.
func startGameServer(t *testing.T, reg *registry.Registry) string {
	t.Helper()

	cfg := &core.Config{}
	cfg.GameServer.ReadTimeoutMs = 20

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	socket, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("error binding test socket: %v", err)
	}

	srv := server.New(cfg, logger, reg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, socket) }()

	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve() returned an unexpected error: %v", err)
		}
		socket.Close()
	})

	return socket.LocalAddr().String()
}

func newTestConn(t *testing.T, address string) *Conn {
	t.Helper()

	conn, err := NewConn(address, testReplyTimeout)
	if err != nil {
		t.Fatalf("error building client conn: %v", err)
	}
	return conn
}

// wantServerError asserts that err is a failure reported by the server with
// exactly the expected message.
func wantServerError(t *testing.T, err error, want string) {
	t.Helper()

	var serverErr *protocol.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected a server error, got %v", err)
	}
	if serverErr.Message != want {
		t.Errorf("server error = %q, want %q", serverErr.Message, want)
	}
}

func TestNewConn(t *testing.T) {
	conn, err := NewConn("127.0.0.1:13000", 0)
	if err != nil {
		t.Fatalf("NewConn returned an unexpected error: %v", err)
	}
	if conn.timeout != DefaultReplyTimeout {
		t.Errorf("timeout = %v, want the default %v", conn.timeout, DefaultReplyTimeout)
	}

	if _, err := NewConn("not-an-address", 0); err == nil {
		t.Error("expected an error resolving a malformed address")
	}
}

func TestNewGameAndListGames(t *testing.T) {
	conn := newTestConn(t, startGameServer(t, registry.New(0)))
	ctx := context.Background()

	gameID, err := conn.NewGame(ctx)
	if err != nil {
		t.Fatalf("NewGame returned an unexpected error: %v", err)
	}
	if gameID == "" {
		t.Fatal("NewGame returned an empty game id")
	}

	games, err := conn.ListGames(ctx)
	if err != nil {
		t.Fatalf("ListGames returned an unexpected error: %v", err)
	}
	want := []protocol.GameSummary{{ID: gameID, Players: 0}}
	if diff := cmp.Diff(want, games); diff != "" {
		t.Errorf("ListGames mismatch; diff:\n%s", diff)
	}
}

func TestJoinGameReportsSessionState(t *testing.T) {
	conn := newTestConn(t, startGameServer(t, registry.New(0)))
	ctx := context.Background()

	gameID, err := conn.NewGame(ctx)
	if err != nil {
		t.Fatalf("NewGame returned an unexpected error: %v", err)
	}

	info, err := conn.JoinGame(ctx, gameID, "fred")
	if err != nil {
		t.Fatalf("JoinGame returned an unexpected error: %v", err)
	}
	if want := protocol.JoinInfo(false, gameID, 1); info != want {
		t.Errorf("first join info = %q, want %q", info, want)
	}

	info, err = conn.JoinGame(ctx, gameID, "barney")
	if err != nil {
		t.Fatalf("JoinGame returned an unexpected error: %v", err)
	}
	if want := protocol.JoinInfo(true, gameID, 2); info != want {
		t.Errorf("second join info = %q, want %q", info, want)
	}
}

func TestJoinGameSurfacesServerErrors(t *testing.T) {
	conn := newTestConn(t, startGameServer(t, registry.New(0)))
	ctx := context.Background()

	_, err := conn.JoinGame(ctx, "fabricated", "fred")
	wantServerError(t, err, protocol.InvalidGameError("fabricated"))

	gameID, err := conn.NewGame(ctx)
	if err != nil {
		t.Fatalf("NewGame returned an unexpected error: %v", err)
	}
	if _, err := conn.JoinGame(ctx, gameID, "fred"); err != nil {
		t.Fatalf("JoinGame returned an unexpected error: %v", err)
	}

	_, err = conn.JoinGame(ctx, gameID, "fred")
	wantServerError(t, err, protocol.NameTakenError("fred", gameID))

	if _, err := conn.JoinGame(ctx, gameID, "barney"); err != nil {
		t.Fatalf("JoinGame returned an unexpected error: %v", err)
	}

	_, err = conn.JoinGame(ctx, gameID, "wilma")
	wantServerError(t, err, protocol.GameFullError(gameID))
}

func TestGameInfo(t *testing.T) {
	conn := newTestConn(t, startGameServer(t, registry.New(0)))
	ctx := context.Background()

	gameID, err := conn.NewGame(ctx)
	if err != nil {
		t.Fatalf("NewGame returned an unexpected error: %v", err)
	}
	if _, err := conn.JoinGame(ctx, gameID, "fred"); err != nil {
		t.Fatalf("JoinGame returned an unexpected error: %v", err)
	}

	summary, err := conn.GameInfo(ctx, gameID)
	if err != nil {
		t.Fatalf("GameInfo returned an unexpected error: %v", err)
	}
	if want := (protocol.GameSummary{ID: gameID, Players: 1}); summary != want {
		t.Errorf("GameInfo = %+v, want %+v", summary, want)
	}

	_, err = conn.GameInfo(ctx, "fabricated")
	wantServerError(t, err, protocol.InvalidGameError("fabricated"))
}

func TestSendPositionAndGetWorld(t *testing.T) {
	conn := newTestConn(t, startGameServer(t, registry.New(0)))
	ctx := context.Background()

	gameID, err := conn.NewGame(ctx)
	if err != nil {
		t.Fatalf("NewGame returned an unexpected error: %v", err)
	}
	for _, name := range []string{"fred", "barney"} {
		if _, err := conn.JoinGame(ctx, gameID, name); err != nil {
			t.Fatalf("JoinGame(%s) returned an unexpected error: %v", name, err)
		}
	}

	record := game.NewPlayer("fred")
	record.Body.X = 250
	record.Body.Y = 300
	record.Dir.Right = true

	world, err := conn.SendPosition(ctx, gameID, record)
	if err != nil {
		t.Fatalf("SendPosition returned an unexpected error: %v", err)
	}
	if !world.Started {
		t.Error("expected the returned session to be started")
	}

	fred := world.FindPlayer("fred")
	if fred == nil {
		t.Fatal("fred missing from the returned session")
	}
	if diff := cmp.Diff(record.Body, fred.Body); diff != "" {
		t.Errorf("published body mismatch; diff:\n%s", diff)
	}

	world, err = conn.GetWorld(ctx, gameID)
	if err != nil {
		t.Fatalf("GetWorld returned an unexpected error: %v", err)
	}
	if fred := world.FindPlayer("fred"); fred == nil || !fred.Dir.Right {
		t.Error("published direction state did not survive the round trip")
	}

	_, err = conn.GetWorld(ctx, "fabricated")
	wantServerError(t, err, protocol.InvalidGameError("fabricated"))
}

func TestCallTimesOutWithoutReply(t *testing.T) {
	// A bound socket that never replies stands in for a dead server.
	socket, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("error binding mute socket: %v", err)
	}
	t.Cleanup(func() { socket.Close() })

	conn, err := NewConn(socket.LocalAddr().String(), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("error building client conn: %v", err)
	}

	_, err = conn.NewGame(context.Background())
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Errorf("expected a timeout error, got %v", err)
	}
}

func TestCallHonorsContextCancellation(t *testing.T) {
	conn := newTestConn(t, startGameServer(t, registry.New(0)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := conn.NewGame(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
