package game

import "math"

// Rect is an axis-aligned rectangle. It doubles as a position (X, Y) and the
// hitbox used for overlap based pickup detection.
type Rect struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// Overlaps reports whether the two rectangles intersect.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.W && other.X < r.X+r.W &&
		r.Y < other.Y+other.H && other.Y < r.Y+r.H
}

// Direction holds the currently-held movement inputs. The flags are
// independent so diagonal movement is expressed by setting two of them.
type Direction struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Any reports whether at least one direction is held.
func (d Direction) Any() bool {
	return d.Up || d.Down || d.Left || d.Right
}

// JumpState tracks the triangular vertical offset cycle. The offset rises to
// PlayerJumpHeight and falls back to zero, independent of horizontal movement.
type JumpState struct {
	Jumping   bool    `json:"jumping"`
	Offset    float32 `json:"offset"`
	Ascending bool    `json:"ascending"`
}

// Player is the full player record as held in a session and as transmitted
// over the wire in sendposition/getworld bodies. Each client authors its own
// record locally and submits it for wholesale replacement on the server; the
// animation frame counters never leave the local simulation.
type Player struct {
	Name    string    `json:"name"`
	Body    Rect      `json:"body"`
	Dir     Direction `json:"direction"`
	LastDir Direction `json:"last_direction"`
	Accel   float32   `json:"acceleration"`
	Jump    JumpState `json:"jump"`
	HP      int64     `json:"hp"`
	MP      int64     `json:"mp"`
	Str     int64     `json:"str"`
	Ate     *Potion   `json:"ate,omitempty"`

	// Walk cycle counters read by the rendering layer. Local only.
	Frame      int `json:"-"`
	frameTicks int
}

// NewPlayer returns a Player with the starting vitals and hitbox. The caller
// decides where it spawns; the zero position is the top-left spawn.
func NewPlayer(name string) *Player {
	return &Player{
		Name: name,
		Body: Rect{X: 100, Y: 100, W: PlayerWidth, H: PlayerHeight},
		HP:   PlayerMaxHP,
		MP:   PlayerMaxMP,
		Str:  PlayerMaxStr,
	}
}

// StartJump begins the vertical offset cycle. Re-triggering mid-jump has no
// effect; the cycle always completes.
func (p *Player) StartJump() {
	if p.Jump.Jumping {
		return
	}
	p.Jump = JumpState{Jumping: true, Ascending: true}
}

// Update advances the player one update tick: the jump cycle, the
// acceleration ramp, position integration from held (or decaying) direction
// intent, and the walk animation counter. It is pure local simulation and
// safe to call only from the goroutine that owns the player.
func (p *Player) Update() {
	p.updateJump()

	if p.Dir.Any() {
		// Freeze a copy of the held flags so deceleration and the idle
		// facing state keep pointing the same way after release.
		p.LastDir = p.Dir
		p.Accel += PlayerAccelRamp
		if p.Accel > PlayerMoveSpeed {
			p.Accel = PlayerMoveSpeed
		}
	} else {
		p.Accel -= PlayerFriction
		if p.Accel < 0 {
			p.Accel = 0
		}
	}

	if p.Accel > 0 {
		p.move(p.LastDir, p.Accel)
		p.advanceFrame()
	} else {
		p.Frame = 0
		p.frameTicks = 0
	}
}

// move shifts the body along each held axis independently. Positions wrap at
// the screen bounds so leaving one side re-enters from the other.
func (p *Player) move(dir Direction, speed float32) {
	if dir.Up {
		p.Body.Y -= speed
	}
	if dir.Down {
		p.Body.Y += speed
	}
	if dir.Left {
		p.Body.X -= speed
	}
	if dir.Right {
		p.Body.X += speed
	}
	p.Body.X = wrap(p.Body.X, ScreenWidth)
	p.Body.Y = wrap(p.Body.Y, ScreenHeight)
}

func (p *Player) updateJump() {
	if !p.Jump.Jumping {
		return
	}
	if p.Jump.Ascending {
		p.Jump.Offset += PlayerJumpSpeed
		if p.Jump.Offset >= PlayerJumpHeight {
			p.Jump.Offset = PlayerJumpHeight
			p.Jump.Ascending = false
		}
		return
	}
	p.Jump.Offset -= PlayerJumpSpeed
	if p.Jump.Offset <= 0 {
		p.Jump = JumpState{}
	}
}

func (p *Player) advanceFrame() {
	p.frameTicks++
	if p.frameTicks >= walkFrameTicks {
		p.frameTicks = 0
		p.Frame = (p.Frame + 1) % walkFrames
	}
}

// Eats reports whether the player's hitbox overlaps the potion.
func (p *Player) Eats(potion *Potion) bool {
	if potion == nil {
		return false
	}
	return p.Body.Overlaps(potion.Pos)
}

// wrap implements a signed modulo so positions leaving one side of the screen
// re-enter from the other, including for negative values.
func wrap(v, bound float32) float32 {
	m := math.Mod(float64(v), float64(bound))
	return float32(math.Mod(m+float64(bound), float64(bound)))
}
