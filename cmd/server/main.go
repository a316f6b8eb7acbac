// The server command is the main entrypoint for running the Item Wars game
// server. It takes care of initializing the shared resources (config,
// logging, the optional match archive) and runs the UDP serve loop until
// the process is interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/justmike2000/item-wars/internal/core"
	"github.com/justmike2000/item-wars/internal/core/debug"
	"github.com/justmike2000/item-wars/internal/data"
	"github.com/justmike2000/item-wars/internal/registry"
	"github.com/justmike2000/item-wars/internal/server"
)

var configFlag = flag.String("config", "./", "Path to the directory containing the server config file")

func main() {
	flag.Parse()

	config := core.LoadConfig(*configFlag)
	fmt.Println("using configuration file from:", *configFlag)

	// Change to the same directory as the config file so that any relative
	// paths in the config file will resolve.
	if err := os.Chdir(filepath.Dir(*configFlag)); err != nil {
		fmt.Println("error changing to config directory:", err)
		os.Exit(1)
	}

	logger, err := core.NewLogger(config)
	if err != nil {
		fmt.Println("error initializing logger:", err)
		os.Exit(1)
	}

	if config.Debugging.PprofEnabled {
		debug.StartPprofServer(logger, config.Debugging.PprofPort)
	}

	db, err := connectArchive(config)
	if err != nil {
		logger.Errorf("error initializing match archive: %v", err)
		os.Exit(1)
	}
	if db != nil {
		defer func() {
			if err := data.Shutdown(db); err != nil {
				logger.Warnf("error closing match archive: %v", err)
			}
		}()
	}

	// Bind the server to one top-level context so that we can shut down cleanly.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Register a SIGTERM handler so that Ctrl-C will shut the server down gracefully.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("waiting to shut down gracefully...")
		cancel()
	}()

	sessionTTL := time.Duration(config.GameServer.SessionTTLMinutes) * time.Minute
	gameServer := server.New(config, logger, registry.New(sessionTTL), db)

	if err := gameServer.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("game server exited: %v", err)
		os.Exit(1)
	}
	fmt.Println("shut down")
}

// connectArchive opens the configured match archive database, or returns nil
// when no engine is configured and archival is disabled.
func connectArchive(config *core.Config) (*gorm.DB, error) {
	engine := strings.ToLower(config.Database.Engine)
	if engine == "" {
		return nil, nil
	}

	dataSource := config.DatabaseURL()
	if engine == "sqlite" {
		dataSource = config.Database.Filename
	}
	return data.Connect(engine, dataSource, config.Debugging.DatabaseLoggingEnabled)
}
