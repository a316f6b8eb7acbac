// This script is a small convenience tool for operating a running Item Wars
// server: creating and inspecting game sessions over the same UDP command
// protocol the game clients speak, and querying the match archive in the
// configured server database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/justmike2000/item-wars/internal/client"
	"github.com/justmike2000/item-wars/internal/core"
	"github.com/justmike2000/item-wars/internal/data"
	"github.com/justmike2000/item-wars/internal/protocol"
)

var (
	newGame = flag.Bool("new", false, "Create a new game session.")
	list    = flag.Bool("list", false, "List sessions still waiting for players.")
	join    = flag.Bool("join", false, "Join a player into a session. Requires -game and -name.")
	info    = flag.Bool("info", false, "Print a session's id and player count. Requires -game.")
	world   = flag.Bool("world", false, "Dump a session's full state. Requires -game.")
	matches = flag.Bool("matches", false, "List archived matches from the configured database.")
	history = flag.Bool("history", false, "Look up one archived match. Requires -game.")
	help    = flag.Bool("help", false, "Print this usage info.")

	gameID     = flag.String("game", "", "Session id the command applies to.")
	playerName = flag.String("name", "", "Player name the command applies to.")
	configFlag = flag.String("config", "./", "Path to the directory containing the config file.")
)

func main() {
	flag.Parse()

	if help != nil && *help {
		flag.Usage()
		os.Exit(0)
	}

	config := core.LoadConfig(*configFlag)

	// defer so os.Exit doesn't prevent our clean up.
	retCode := 0
	defer func() { os.Exit(retCode) }()

	var err error
	switch {
	case *newGame:
		err = runCommand(config, createGame)
	case *list:
		err = runCommand(config, listGames)
	case *join:
		err = requireArgs(*gameID != "" && *playerName != "", "-join requires -game and -name")
		if err == nil {
			err = runCommand(config, joinGame)
		}
	case *info:
		err = requireArgs(*gameID != "", "-info requires -game")
		if err == nil {
			err = runCommand(config, gameInfo)
		}
	case *world:
		err = requireArgs(*gameID != "", "-world requires -game")
		if err == nil {
			err = runCommand(config, getWorld)
		}
	case *matches:
		err = listMatches(config)
	case *history:
		err = requireArgs(*gameID != "", "-history requires -game")
		if err == nil {
			err = matchHistory(config)
		}
	default:
		flag.Usage()
		retCode = 1
		return
	}

	if err != nil {
		fmt.Println(presentError(err))
		retCode = 1
	}
}

func requireArgs(ok bool, usage string) error {
	if !ok {
		return errors.New(usage)
	}
	return nil
}

// presentError title-cases errors reported by the server itself so the
// operator-facing output reads like a status line rather than a raw wire
// string. Local errors are passed through untouched.
func presentError(err error) string {
	var serverErr *protocol.ServerError
	if errors.As(err, &serverErr) {
		return cases.Title(language.English).String(serverErr.Message)
	}
	return err.Error()
}

func runCommand(config *core.Config, command func(context.Context, *client.Conn) error) error {
	conn, err := client.NewConn(
		config.Client.ServerAddress,
		time.Duration(config.Client.ReplyTimeoutMs)*time.Millisecond,
	)
	if err != nil {
		return err
	}
	return command(context.Background(), conn)
}

func createGame(ctx context.Context, conn *client.Conn) error {
	id, err := conn.NewGame(ctx)
	if err != nil {
		return err
	}
	fmt.Println("created game:", id)
	return nil
}

func listGames(ctx context.Context, conn *client.Conn) error {
	games, err := conn.ListGames(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Println("no open games")
		return nil
	}
	for _, g := range games {
		fmt.Printf("%s  %d player(s)\n", g.ID, g.Players)
	}
	return nil
}

func joinGame(ctx context.Context, conn *client.Conn) error {
	status, err := conn.JoinGame(ctx, *gameID, *playerName)
	if err != nil {
		return err
	}
	fmt.Println(status)
	return nil
}

func gameInfo(ctx context.Context, conn *client.Conn) error {
	summary, err := conn.GameInfo(ctx, *gameID)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %d player(s)\n", summary.ID, summary.Players)
	return nil
}

func getWorld(ctx context.Context, conn *client.Conn) error {
	session, err := conn.GetWorld(ctx, *gameID)
	if err != nil {
		return err
	}
	pretty, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))
	return nil
}

// openArchive connects to the match archive database declared in the config
// file, returning a cleanup func which should be deferred.
func openArchive(config *core.Config) (*gorm.DB, func(), error) {
	engine := strings.ToLower(config.Database.Engine)
	if engine == "" {
		return nil, nil, errors.New("no database engine configured; the match archive is disabled")
	}

	dataSource := config.DatabaseURL()
	if engine == "sqlite" {
		dataSource = config.Database.Filename
	}

	db, err := data.Connect(engine, dataSource, config.Debugging.DatabaseLoggingEnabled)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = data.Shutdown(db) }, nil
}

func listMatches(config *core.Config) error {
	db, cleanup, err := openArchive(config)
	if err != nil {
		return err
	}
	defer cleanup()

	records, err := data.ListMatches(db, matchListLimit)
	if err != nil {
		return fmt.Errorf("failed to list matches: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("no archived matches")
		return nil
	}
	for _, m := range records {
		printMatch(&m)
	}
	return nil
}

func matchHistory(config *core.Config) error {
	db, cleanup, err := openArchive(config)
	if err != nil {
		return err
	}
	defer cleanup()

	match, err := data.FindMatchBySessionID(db, *gameID)
	if err != nil {
		return fmt.Errorf("failed to look up match: %w", err)
	}
	if match == nil {
		fmt.Println("no archived match with session id", *gameID)
		return nil
	}
	printMatch(match)
	return nil
}

const matchListLimit = 50

func printMatch(m *data.Match) {
	players := m.PlayerOne
	if m.PlayerTwo != "" {
		players += " vs " + m.PlayerTwo
	}
	if players == "" {
		players = "(no players joined)"
	}
	fmt.Printf("%s  started=%v  %s  reaped %s\n",
		m.SessionID, m.Started, players, m.ReapedAt.Format(time.RFC3339))
}
