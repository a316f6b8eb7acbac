package game

import "math/rand"

// PotionType selects both the visual sub-frame and the intended effect of a
// potion. The stat effects are not applied by this subsystem.
type PotionType string

const (
	HealthPotion PotionType = "health"
	ManaPotion   PotionType = "mana"
)

// Potion is a pickup placed somewhere on the screen. Potions are spawned
// independently by each client and are not part of the networked session
// state.
type Potion struct {
	Pos  Rect       `json:"position"`
	Type PotionType `json:"type"`
}

// SpawnPotion places a new potion of a random type at a random position
// within the playable screen bounds, clear of the HUD rows.
func SpawnPotion(rng *rand.Rand) *Potion {
	t := HealthPotion
	if rng.Intn(2) == 1 {
		t = ManaPotion
	}
	return &Potion{
		Pos: Rect{
			X: rng.Float32() * (ScreenWidth - GridCellSize),
			Y: GridCellSize + rng.Float32()*(ScreenHeight-3*GridCellSize),
			W: GridCellSize,
			H: GridCellSize,
		},
		Type: t,
	}
}
