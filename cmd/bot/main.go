// The bot command runs a headless Item Wars client: it joins (or creates) a
// game session and then drives the full synchronization loop with a scripted
// wandering input, standing in for a second player during development and
// load testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justmike2000/item-wars/internal/client"
	"github.com/justmike2000/item-wars/internal/core"
	"github.com/justmike2000/item-wars/internal/game"
)

var (
	configFlag = flag.String("config", "./", "Path to the directory containing the config file.")
	serverFlag = flag.String("server", "", "Game server address, overriding the configured one.")
	gameFlag   = flag.String("game", "", "Session id to join. Blank creates a new session.")
	nameFlag   = flag.String("name", "bot", "Player name to join as.")
)

func main() {
	flag.Parse()

	config := core.LoadConfig(*configFlag)
	if *serverFlag != "" {
		config.Client.ServerAddress = *serverFlag
	}

	logger, err := core.NewLogger(config)
	if err != nil {
		fmt.Println("error initializing logger:", err)
		os.Exit(1)
	}

	conn, err := client.NewConn(
		config.Client.ServerAddress,
		time.Duration(config.Client.ReplyTimeoutMs)*time.Millisecond,
	)
	if err != nil {
		logger.Errorf("error setting up connection: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
	}()

	gameID := *gameFlag
	if gameID == "" {
		if gameID, err = conn.NewGame(ctx); err != nil {
			logger.Errorf("error creating game: %v", err)
			os.Exit(1)
		}
		logger.Infof("created game %s", gameID)
	}

	status, err := conn.JoinGame(ctx, gameID, *nameFlag)
	if err != nil {
		logger.Errorf("error joining game %s: %v", gameID, err)
		os.Exit(1)
	}
	logger.Info(status)

	loop := client.NewSyncLoop(conn, logger, config, gameID, *nameFlag)
	loop.Input = wander(rand.New(rand.NewSource(time.Now().UnixNano())))

	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Errorf("sync loop exited: %v", err)
		os.Exit(1)
	}
	logger.Infof("bot %s leaving game %s (%d stale ticks)", *nameFlag, gameID, loop.StaleTicks())
}

// wander returns an input script that drifts the player around the arena,
// holding each randomly chosen direction for a short stretch and hopping
// now and then.
func wander(rng *rand.Rand) func(*game.Player) {
	var held game.Direction
	var ticksLeft int

	return func(p *game.Player) {
		ticksLeft--
		if ticksLeft <= 0 {
			ticksLeft = 15 + rng.Intn(45)
			held = game.Direction{
				Up:    rng.Intn(3) == 0,
				Down:  rng.Intn(3) == 0,
				Left:  rng.Intn(3) == 0,
				Right: rng.Intn(3) == 0,
			}
			if rng.Intn(4) == 0 {
				p.StartJump()
			}
		}
		p.Dir = held
	}
}
