package game

// Gameplay constants shared by every client and the server. Position integration
// happens client side at the update tick, so changing any of the movement values
// changes the game for every player in a session.
const (
	ScreenWidth  = 640.0
	ScreenHeight = 480.0

	// Sprite cell used for HUD rows and potion placement.
	GridCellSize = 32.0

	PlayerWidth  = 34.0
	PlayerHeight = 44.0

	PlayerMaxHP  = 100
	PlayerMaxMP  = 30
	PlayerMaxStr = 10

	// Pixels per update tick at full acceleration.
	PlayerMoveSpeed = 10.0
	// Acceleration gained per update tick while any direction is held.
	PlayerAccelRamp = 1.0
	// Acceleration lost per update tick while idle.
	PlayerFriction = 1.0

	// Peak of the jump arc in pixels and the per-tick offset change while in it.
	PlayerJumpHeight = 48.0
	PlayerJumpSpeed  = 6.0

	// Walk animation advances one frame every walkFrameTicks update ticks.
	walkFrames     = 4
	walkFrameTicks = 3
)
