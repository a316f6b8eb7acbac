// Package server hosts the UDP game server: one socket, one goroutine, and a
// receive/dispatch/reply loop over the JSON command protocol. All session
// state lives in the registry and is only ever touched from the serve loop,
// so no handler takes a lock.
package server

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/justmike2000/item-wars/internal/core"
	"github.com/justmike2000/item-wars/internal/data"
	"github.com/justmike2000/item-wars/internal/protocol"
	"github.com/justmike2000/item-wars/internal/registry"
)

// Datagrams larger than this are truncated by the read and will fail to
// decode; no legitimate command comes anywhere near it.
const maxPacketSize = 2048

// Server owns the UDP socket and drives every session through the registry.
type Server struct {
	config     *core.Config
	logger     *logrus.Logger
	registry   *registry.Registry
	dispatcher *Dispatcher

	// db receives archived matches for sessions reaped by the registry
	// sweep. When nil, reaped sessions are discarded after logging.
	db *gorm.DB

	sweepInterval time.Duration
	lastSweep     time.Time
}

func New(cfg *core.Config, logger *logrus.Logger, reg *registry.Registry, db *gorm.DB) *Server {
	return &Server{
		config:        cfg,
		logger:        logger,
		registry:      reg,
		dispatcher:    &Dispatcher{Registry: reg, Logger: logger},
		db:            db,
		sweepInterval: time.Second,
	}
}

// ListenAndServe binds the configured UDP address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp4", s.config.GameServerAddress())
	if err != nil {
		return err
	}
	socket, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return err
	}
	defer socket.Close()

	return s.Serve(ctx, socket)
}

// Serve runs the receive loop on an already-bound socket until ctx is
// cancelled. The read deadline bounds how long a quiet server sleeps, which
// is what lets shutdown and session sweeps happen without a second
// goroutine touching the registry.
func (s *Server) Serve(ctx context.Context, socket *net.UDPConn) error {
	readTimeout := time.Duration(s.config.GameServer.ReadTimeoutMs) * time.Millisecond
	if readTimeout <= 0 {
		readTimeout = time.Second
	}

	s.logger.Infof("waiting for commands on %s", socket.LocalAddr())

	buffer := make([]byte, maxPacketSize)
	for {
		select {
		case <-ctx.Done():
			s.logger.Infof("shutting down game server")
			return nil
		default:
		}

		if err := socket.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return err
		}

		n, sender, err := socket.ReadFromUDP(buffer)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				s.sweepSessions()
				continue
			}
			select {
			case <-ctx.Done():
				s.logger.Infof("shutting down game server")
				return nil
			default:
			}
			s.logger.Warnf("read error: %v", err)
			continue
		}

		s.handlePacket(socket, sender, buffer[:n])
		s.sweepSessions()
	}
}

// handlePacket runs one datagram through decode, dispatch, and reply. A
// payload that cannot even be decoded into a request envelope is dropped
// without a response; every decoded request gets exactly one reply.
func (s *Server) handlePacket(socket *net.UDPConn, sender *net.UDPAddr, payload []byte) {
	if s.config.Debugging.PacketLoggingEnabled {
		s.logger.Debugf("recv %d bytes from %s: %s", len(payload), sender, payload)
	}

	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		s.logger.Warnf("dropping undecodable packet from %s: %v", sender, err)
		return
	}

	response := s.dispatcher.Dispatch(req)
	out, err := protocol.EncodeResponse(response)
	if err != nil {
		s.logger.Errorf("failed to encode response for %q: %v", req.Command, err)
		return
	}

	if s.config.Debugging.PacketLoggingEnabled {
		s.logger.Debugf("send %d bytes to %s: %s", len(out), sender, out)
	}

	if _, err := socket.WriteToUDP(out, sender); err != nil {
		s.logger.Warnf("failed to reply to %s: %v", sender, err)
	}
}

// sweepSessions reaps idle sessions at most once per sweep interval and
// archives whatever the registry expired. Called only from the serve loop.
func (s *Server) sweepSessions() {
	if time.Since(s.lastSweep) < s.sweepInterval {
		return
	}
	s.lastSweep = time.Now()

	reaped := s.registry.Sweep()
	for _, g := range reaped {
		s.logger.Infof("reaped idle game %s (%d players)", g.ID, g.PlayerCount())
		if s.db == nil {
			continue
		}
		if err := data.CreateMatch(s.db, data.NewMatch(g, time.Now())); err != nil {
			s.logger.Errorf("failed to archive game %s: %v", g.ID, err)
		}
	}
}
