package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-test/deep"

	"github.com/justmike2000/item-wars/internal/game"
)

func testPlayer() *game.Player {
	return &game.Player{
		Name:    "fred",
		Body:    game.Rect{X: 10, Y: 20, W: 34, H: 44},
		Dir:     game.Direction{Up: true, Right: true},
		LastDir: game.Direction{Right: true},
		Accel:   7.5,
		Jump:    game.JumpState{Jumping: true, Offset: 12, Ascending: false},
		HP:      game.PlayerMaxHP,
		MP:      game.PlayerMaxMP,
		Str:     game.PlayerMaxStr,
		Ate: &game.Potion{
			Pos:  game.Rect{X: 300, Y: 200, W: 32, H: 32},
			Type: game.ManaPotion,
		},
	}
}

func TestPlayerMetaRoundTrip(t *testing.T) {
	player := testPlayer()
	// Animation state never goes over the wire.
	player.Frame = 3

	meta, err := EncodePlayerMeta(player)
	if err != nil {
		t.Fatalf("EncodePlayerMeta() returned an unexpected error: %v", err)
	}
	decoded, err := DecodePlayerMeta(meta)
	if err != nil {
		t.Fatalf("DecodePlayerMeta() returned an unexpected error: %v", err)
	}

	if decoded.Frame != 0 {
		t.Errorf("animation frame crossed the wire: got %d, want 0", decoded.Frame)
	}

	player.Frame = 0
	if diff := deep.Equal(player, decoded); len(diff) > 0 {
		t.Fatal(diff)
	}
}

func TestPlayerMetaValidation(t *testing.T) {
	tests := []struct {
		name string
		meta string
	}{
		{"not json", "definitely not json"},
		{"missing name", `{"body":{"x":1,"y":2,"w":3,"h":4}}`},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePlayerMeta(tt.meta); err == nil {
				t.Error("DecodePlayerMeta() accepted an invalid record")
			}
		})
	}

	if _, err := EncodePlayerMeta(nil); err == nil {
		t.Error("EncodePlayerMeta() accepted a nil player")
	}
}

func TestRequestRoundTrip(t *testing.T) {
	req := Request{
		Command: CmdSendPosition,
		GameID:  "4af9bdcc",
		Name:    "fred",
		Meta:    `{"name":"fred"}`,
	}

	data, err := EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest() returned an unexpected error: %v", err)
	}
	decoded, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest() returned an unexpected error: %v", err)
	}

	if diff := deep.Equal(req, decoded); len(diff) > 0 {
		t.Fatal(diff)
	}
}

func TestRequestValidation(t *testing.T) {
	if _, err := EncodeRequest(Request{}); err == nil {
		t.Error("EncodeRequest() accepted an empty command")
	}
	if _, err := DecodeRequest(nil); err == nil {
		t.Error("DecodeRequest() accepted an empty payload")
	}
	if _, err := DecodeRequest([]byte("{{{{")); err == nil {
		t.Error("DecodeRequest() accepted a malformed payload")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	session := game.NewNetworkedGame()
	for _, name := range []string{"fred", "barney"} {
		if _, err := session.AddPlayer(name); err != nil {
			t.Fatalf("error building test session: %v", err)
		}
	}
	session.Players[0].Dir = game.Direction{Down: true}
	session.Players[1].Jump = game.JumpState{Jumping: true, Offset: 30, Ascending: true}

	data, err := EncodeResponse(session)
	if err != nil {
		t.Fatalf("EncodeResponse() returned an unexpected error: %v", err)
	}
	decoded, err := DecodeSession(data)
	if err != nil {
		t.Fatalf("DecodeSession() returned an unexpected error: %v", err)
	}

	if diff := deep.Equal(session, decoded); len(diff) > 0 {
		t.Fatal(diff)
	}
}

func TestGameSummaryEncodesAsPair(t *testing.T) {
	resp := ListGamesResponse{Games: []GameSummary{
		{ID: "abc", Players: 0},
		{ID: "def", Players: 1},
	}}

	data, err := EncodeResponse(resp)
	if err != nil {
		t.Fatalf("EncodeResponse() returned an unexpected error: %v", err)
	}

	want := `{"games":[["abc",0],["def",1]]}`
	if string(data) != want {
		t.Fatalf("listgames body = %s, want %s", data, want)
	}

	decoded, err := DecodeListGames(data)
	if err != nil {
		t.Fatalf("DecodeListGames() returned an unexpected error: %v", err)
	}
	if diff := deep.Equal(resp, decoded); len(diff) > 0 {
		t.Fatal(diff)
	}
}

func TestGameSummaryRejectsMalformedPairs(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not an array", `{"game": {"id": "abc"}}`},
		{"id not a string", `{"game": [1, 2]}`},
		{"count not a number", `{"game": ["abc", "xyz"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp GameInfoResponse
			if err := json.Unmarshal([]byte(tt.body), &resp); err == nil {
				t.Error("unmarshal accepted a malformed game summary")
			}
		})
	}
}

func TestDecodeError(t *testing.T) {
	msg, ok := DecodeError([]byte(`{"error": "Invalid Game abc"}`))
	if !ok || msg != "Invalid Game abc" {
		t.Errorf("DecodeError() = %q, %v, want the error string and true", msg, ok)
	}

	if _, ok := DecodeError([]byte(`{"game_id": "abc"}`)); ok {
		t.Error("DecodeError() reported an error for a success body")
	}
}

func TestDecodeRepliesSurfaceServerErrors(t *testing.T) {
	body := []byte(`{"error": "game abc is full"}`)

	_, err := DecodeJoin(body)
	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("DecodeJoin() error = %v, want a *ServerError", err)
	}
	if serverErr.Message != "game abc is full" {
		t.Errorf("server error message = %q, want the wire error string", serverErr.Message)
	}
}

func TestDecodeNewGameRequiresID(t *testing.T) {
	if _, err := DecodeNewGame([]byte(`{}`)); err == nil {
		t.Error("DecodeNewGame() accepted a body with no game_id")
	}

	resp, err := DecodeNewGame([]byte(`{"game_id": "abc"}`))
	if err != nil {
		t.Fatalf("DecodeNewGame() returned an unexpected error: %v", err)
	}
	if resp.GameID != "abc" {
		t.Errorf("game id = %q, want abc", resp.GameID)
	}
}

func TestDecodeSessionRequiresID(t *testing.T) {
	if _, err := DecodeSession([]byte(`{"players": []}`)); err == nil {
		t.Error("DecodeSession() accepted a body with no session id")
	}
}
