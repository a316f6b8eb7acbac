package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/justmike2000/item-wars/internal/game"
)

// EncodeRequest serializes a request envelope for transmission.
func EncodeRequest(req Request) ([]byte, error) {
	if req.Command == "" {
		return nil, fmt.Errorf("refusing to encode request with empty command")
	}
	return json.Marshal(req)
}

// DecodeRequest parses a received datagram into a request envelope. A failure
// here means the payload was not valid wire format at all; the server drops
// such packets without replying.
func DecodeRequest(data []byte) (Request, error) {
	if len(data) == 0 {
		return Request{}, fmt.Errorf("empty request payload")
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("decoding request: %w", err)
	}
	return req, nil
}

// EncodeResponse serializes any of the response payload shapes, including a
// full game.NetworkedGame for sendposition/getworld bodies.
func EncodeResponse(payload interface{}) ([]byte, error) {
	if payload == nil {
		return nil, fmt.Errorf("refusing to encode nil response")
	}
	return json.Marshal(payload)
}

// DecodeError inspects a response body for the structured failure shape and
// returns the error string if one is present.
func DecodeError(data []byte) (string, bool) {
	var resp ErrorResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", false
	}
	return resp.Error, resp.Error != ""
}

// DecodeNewGame parses a newgame response body.
func DecodeNewGame(data []byte) (NewGameResponse, error) {
	var resp NewGameResponse
	if err := decodeReply(data, &resp); err != nil {
		return NewGameResponse{}, err
	}
	if resp.GameID == "" {
		return NewGameResponse{}, fmt.Errorf("newgame response missing game_id")
	}
	return resp, nil
}

// DecodeJoin parses a joingame response body.
func DecodeJoin(data []byte) (JoinResponse, error) {
	var resp JoinResponse
	err := decodeReply(data, &resp)
	return resp, err
}

// DecodeListGames parses a listgames response body.
func DecodeListGames(data []byte) (ListGamesResponse, error) {
	var resp ListGamesResponse
	err := decodeReply(data, &resp)
	return resp, err
}

// DecodeGameInfo parses a gameinfo response body.
func DecodeGameInfo(data []byte) (GameInfoResponse, error) {
	var resp GameInfoResponse
	err := decodeReply(data, &resp)
	return resp, err
}

// DecodeSession parses the full session body returned by sendposition and
// getworld.
func DecodeSession(data []byte) (*game.NetworkedGame, error) {
	var session game.NetworkedGame
	if err := decodeReply(data, &session); err != nil {
		return nil, err
	}
	if session.ID == "" {
		return nil, fmt.Errorf("session response missing id")
	}
	return &session, nil
}

// ServerError is a failure reported by the server itself, as opposed to a
// transport or decoding problem on the way there.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// decodeReply surfaces a structured error response as a *ServerError,
// otherwise unmarshals the success shape into out.
func decodeReply(data []byte, out interface{}) error {
	if msg, isErr := DecodeError(data); isErr {
		return &ServerError{Message: msg}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// EncodePlayerMeta serializes a player record for the meta field of a
// sendposition request.
func EncodePlayerMeta(p *game.Player) (string, error) {
	if p == nil {
		return "", fmt.Errorf("refusing to encode nil player")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding player meta: %w", err)
	}
	return string(data), nil
}

// DecodePlayerMeta parses the nested player record out of a sendposition
// meta field.
func DecodePlayerMeta(meta string) (*game.Player, error) {
	var p game.Player
	if err := json.Unmarshal([]byte(meta), &p); err != nil {
		return nil, fmt.Errorf("decoding player meta: %w", err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("player meta missing name")
	}
	return &p, nil
}
