package client

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/justmike2000/item-wars/internal/core"
	"github.com/justmike2000/item-wars/internal/game"
	"github.com/justmike2000/item-wars/internal/protocol"
)

// SyncLoop drives one player's session from join to shutdown. It waits for
// the session to fill, then runs two cadences on a single goroutine: a
// simulation tick that advances the local player and a network tick that
// publishes it and pulls down the opponent. A missed or late reply never
// stops the simulation; the loop keeps rendering the last known opponent
// state and counts the stale tick.
type SyncLoop struct {
	// Input, when set, is invoked before each simulation step so an input
	// layer can set direction flags or trigger a jump on the local player.
	// The loop itself only reads those flags.
	Input func(*game.Player)

	conn   *Conn
	logger *logrus.Logger
	gameID string

	local    *game.Player
	opponent *game.Player
	potion   *game.Potion
	rng      *rand.Rand

	updateTick  time.Duration
	networkTick time.Duration
	waitPoll    time.Duration

	staleTicks int
}

// NewSyncLoop prepares a loop for one player in one session. The player must
// already have joined the session; the loop only synchronizes it.
func NewSyncLoop(conn *Conn, logger *logrus.Logger, cfg *core.Config, gameID, playerName string) *SyncLoop {
	return &SyncLoop{
		conn:        conn,
		logger:      logger,
		gameID:      gameID,
		local:       game.NewPlayer(playerName),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		updateTick:  msOrDefault(cfg.Client.UpdateTickMs, 33),
		networkTick: msOrDefault(cfg.Client.NetworkTickMs, 20),
		waitPoll:    msOrDefault(cfg.Client.WaitPollMs, 250),
	}
}

// Local returns the player record this loop simulates and publishes.
func (s *SyncLoop) Local() *game.Player {
	return s.local
}

// Opponent returns the last known remote player state, or nil before the
// first hydration.
func (s *SyncLoop) Opponent() *game.Player {
	return s.opponent
}

// StaleTicks reports how many network ticks have completed without a usable
// server reply since the loop started.
func (s *SyncLoop) StaleTicks() int {
	return s.staleTicks
}

// Run blocks until ctx is cancelled or the session becomes unreachable. It
// first polls until the session starts, then interleaves simulation and
// network ticks.
func (s *SyncLoop) Run(ctx context.Context) error {
	if err := s.waitForStart(ctx); err != nil {
		return err
	}

	s.potion = game.SpawnPotion(s.rng)

	updateTicker := time.NewTicker(s.updateTick)
	defer updateTicker.Stop()
	networkTicker := time.NewTicker(s.networkTick)
	defer networkTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-updateTicker.C:
			s.updateLocal()
		case <-networkTicker.C:
			s.syncRemote(ctx)
		}
	}
}

// waitForStart polls the session until its started flag flips, then performs
// the initial hydration: the local player adopts the spawn position the
// server assigned at join, and the opponent record is created. Transport
// errors are retried on the next poll; an error from the server itself, such
// as the session no longer existing, aborts the wait.
func (s *SyncLoop) waitForStart(ctx context.Context) error {
	s.logger.Infof("waiting for game %s to start", s.gameID)

	ticker := time.NewTicker(s.waitPoll)
	defer ticker.Stop()

	for {
		world, err := s.conn.GetWorld(ctx, s.gameID)
		var serverErr *protocol.ServerError
		switch {
		case errors.As(err, &serverErr):
			return err
		case err != nil:
			s.logger.Debugf("start poll for game %s failed: %v", s.gameID, err)
		case world.Started:
			s.hydrate(world)
			s.logger.Infof("game %s started with %d players", s.gameID, len(world.Players))
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// hydrate applies the first authoritative session snapshot.
func (s *SyncLoop) hydrate(world *game.NetworkedGame) {
	for _, p := range world.Players {
		if p.Name == s.local.Name {
			s.local.Body = p.Body
			continue
		}
		s.reconcilePlayer(p)
	}
}

// updateLocal advances the local simulation one step: input flags, movement
// and jump physics, then potion pickup. Potions are spawned locally and are
// never part of the synced state.
func (s *SyncLoop) updateLocal() {
	if s.Input != nil {
		s.Input(s.local)
	}
	s.local.Update()

	s.local.Ate = nil
	if s.potion != nil && s.local.Eats(s.potion) {
		s.local.Ate = s.potion
		s.potion = game.SpawnPotion(s.rng)
	}
}

// syncRemote publishes the local record and refreshes the opponent from the
// server's view. Any failure leaves the previous opponent state in place.
func (s *SyncLoop) syncRemote(ctx context.Context) {
	if _, err := s.conn.SendPosition(ctx, s.gameID, s.local); err != nil {
		s.staleTicks++
		s.logger.Debugf("sendposition for game %s failed, keeping last known state: %v", s.gameID, err)
		return
	}

	world, err := s.conn.GetWorld(ctx, s.gameID)
	if err != nil {
		s.staleTicks++
		s.logger.Debugf("getworld for game %s failed, keeping last known state: %v", s.gameID, err)
		return
	}

	s.reconcile(world)
}

// reconcile overwrites the opponent's position and movement state from a
// session snapshot. Vitals are copied only when the opponent record is first
// created and animation state is never synced; both stay local concerns.
func (s *SyncLoop) reconcile(world *game.NetworkedGame) {
	for _, p := range world.Players {
		if p.Name == s.local.Name {
			continue
		}
		s.reconcilePlayer(p)
		return
	}
}

func (s *SyncLoop) reconcilePlayer(p *game.Player) {
	if s.opponent == nil {
		s.opponent = &game.Player{Name: p.Name, HP: p.HP, MP: p.MP, Str: p.Str}
	}
	s.opponent.Name = p.Name
	s.opponent.Body = p.Body
	s.opponent.Dir = p.Dir
	s.opponent.LastDir = p.LastDir
	s.opponent.Jump = p.Jump
}

func msOrDefault(ms, fallback int) time.Duration {
	if ms <= 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}
