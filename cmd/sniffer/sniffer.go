package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/gopacket"

	"github.com/justmike2000/item-wars/internal/protocol"
)

// sniffer decodes captured datagrams as Item Wars protocol traffic. Which
// side sent a packet is inferred from the ports: anything addressed to the
// game port is a request and anything sent from it is a response.
type sniffer struct {
	gamePort uint16
	verbose  bool
}

func (s *sniffer) startReading(packetChan chan gopacket.Packet) {
	for packet := range packetChan {
		transport := packet.TransportLayer()
		app := packet.ApplicationLayer()
		if transport == nil || app == nil {
			continue
		}

		flow := transport.TransportFlow()
		srcPort := binary.BigEndian.Uint16(flow.Src().Raw())
		dstPort := binary.BigEndian.Uint16(flow.Dst().Raw())

		switch {
		case dstPort == s.gamePort:
			s.printRequest(flow, app.Payload())
		case srcPort == s.gamePort:
			s.printResponse(flow, app.Payload())
		}
	}
}

func (s *sniffer) printRequest(flow gopacket.Flow, payload []byte) {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		s.printOpaque(flow, payload)
		return
	}

	line := req.Command
	if req.GameID != "" {
		line += " game=" + req.GameID
	}
	if req.Name != "" {
		line += " name=" + req.Name
	}
	fmt.Printf("%v > %v  request   %s\n", flow.Src(), flow.Dst(), line)

	if s.verbose {
		spew.Dump(req)
	}
}

func (s *sniffer) printResponse(flow gopacket.Flow, payload []byte) {
	summary, decoded := classifyResponse(payload)
	if decoded == nil {
		s.printOpaque(flow, payload)
		return
	}

	fmt.Printf("%v > %v  response  %s\n", flow.Src(), flow.Dst(), summary)

	if s.verbose {
		spew.Dump(decoded)
	}
}

func (s *sniffer) printOpaque(flow gopacket.Flow, payload []byte) {
	fmt.Printf("%v > %v  %d bytes of non-protocol data\n", flow.Src(), flow.Dst(), len(payload))
}

// classifyResponse works out which of the protocol's reply shapes a payload
// carries. Responses don't name the command they answer, so this looks at
// which fields are present, most specific shape first.
func classifyResponse(payload []byte) (string, interface{}) {
	if msg, ok := protocol.DecodeError(payload); ok {
		return "error: " + msg, protocol.ErrorResponse{Error: msg}
	}

	if session, err := protocol.DecodeSession(payload); err == nil {
		return fmt.Sprintf("session %s started=%v players=%d",
			session.ID, session.Started, len(session.Players)), session
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return "", nil
	}

	switch {
	case fields["game_id"] != nil:
		resp, err := protocol.DecodeNewGame(payload)
		if err != nil {
			return "", nil
		}
		return "new game " + resp.GameID, resp
	case fields["games"] != nil:
		resp, err := protocol.DecodeListGames(payload)
		if err != nil {
			return "", nil
		}
		return fmt.Sprintf("%d open game(s)", len(resp.Games)), resp
	case fields["game"] != nil:
		resp, err := protocol.DecodeGameInfo(payload)
		if err != nil {
			return "", nil
		}
		return fmt.Sprintf("game %s has %d player(s)", resp.Game.ID, resp.Game.Players), resp
	case fields["info"] != nil:
		resp, err := protocol.DecodeJoin(payload)
		if err != nil {
			return "", nil
		}
		return resp.Info, resp
	}
	return "", nil
}
