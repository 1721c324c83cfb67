package data

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MoveKind — категория движения магии.
// Определяет и форму траектории, и (через registry) поведение на статы.
type MoveKind int8

const (
	MoveNone            MoveKind = 0
	MoveFixedPosition   MoveKind = 1
	MoveSingle          MoveKind = 2
	MoveLine            MoveKind = 3
	MoveCircle          MoveKind = 4
	MoveHeart           MoveKind = 5
	MoveSpiral          MoveKind = 6
	MoveSector          MoveKind = 7
	MoveRandomSector    MoveKind = 8
	MoveFixedWall       MoveKind = 9
	MoveWall            MoveKind = 10
	MoveRegionBased     MoveKind = 11
	MoveFollowCharacter MoveKind = 13
	MoveSuperMode       MoveKind = 15
	MoveFollowEnemy     MoveKind = 16
	MoveThrow           MoveKind = 17
	MoveTrailing        MoveKind = 19
	MoveTransport       MoveKind = 20
	MovePlayerControl   MoveKind = 21
	MoveSummon          MoveKind = 22
	MoveVMove           MoveKind = 23
)

var moveKindNames = map[MoveKind]string{
	MoveNone:            "none",
	MoveFixedPosition:   "fixed_position",
	MoveSingle:          "single",
	MoveLine:            "line",
	MoveCircle:          "circle",
	MoveHeart:           "heart",
	MoveSpiral:          "spiral",
	MoveSector:          "sector",
	MoveRandomSector:    "random_sector",
	MoveFixedWall:       "fixed_wall",
	MoveWall:            "wall",
	MoveRegionBased:     "region",
	MoveFollowCharacter: "follow_character",
	MoveSuperMode:       "super_mode",
	MoveFollowEnemy:     "follow_enemy",
	MoveThrow:           "throw",
	MoveTrailing:        "trailing",
	MoveTransport:       "transport",
	MovePlayerControl:   "player_control",
	MoveSummon:          "summon",
	MoveVMove:           "v_move",
}

// String returns the catalog name of the move kind.
func (k MoveKind) String() string {
	if name, ok := moveKindNames[k]; ok {
		return name
	}
	return "move_kind_" + strconv.Itoa(int(k))
}

// KnownMoveKinds returns every named move kind in ascending order.
func KnownMoveKinds() []MoveKind {
	return slices.Sorted(maps.Keys(moveKindNames))
}

// ParseMoveKind parses a catalog name, a numeric value or the "move_kind_N" form of String.
func ParseMoveKind(s string) (MoveKind, error) {
	for k, name := range moveKindNames {
		if name == s {
			return k, nil
		}
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "move_kind_"))
	if err != nil {
		return MoveNone, fmt.Errorf("unknown move kind %q", s)
	}
	if n < -128 || n > 127 {
		return MoveNone, fmt.Errorf("move kind %d out of range", n)
	}
	return MoveKind(n), nil
}

// UnmarshalYAML accepts both "single" and 2.
func (k *MoveKind) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseMoveKind(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*k = parsed
	return nil
}

// MarshalYAML writes the catalog name.
func (k MoveKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// SpecialKind — под-вид магии. Для FollowCharacter выбирает эффект на персонажа.
type SpecialKind int8

const (
	SpecialNone                     SpecialKind = 0
	SpecialAddLife                  SpecialKind = 1
	SpecialAddThew                  SpecialKind = 2
	SpecialAddMana                  SpecialKind = 3
	SpecialBuff                     SpecialKind = 4
	SpecialInvisible                SpecialKind = 5
	SpecialInvisibleVisibleOnAttack SpecialKind = 6
	SpecialChangeCharacter          SpecialKind = 7
	SpecialRemoveAbnormal           SpecialKind = 8
	SpecialChangeFlyIni             SpecialKind = 9
)

// RegionShape — форма области для RegionBased магии.
type RegionShape int8

const (
	RegionSquare RegionShape = iota
	RegionCross
	RegionRectangle
	RegionIsoscelesTriangle
)

// SpellDefinition — immutable шаблон магии, загруженный из каталога.
// Shared across all casters — НЕ модифицировать после загрузки.
type SpellDefinition struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	MoveKind    MoveKind    `yaml:"move_kind"`
	SpecialKind SpecialKind `yaml:"special_kind,omitempty"`

	Effect     int32 `yaml:"effect,omitempty"`
	Effect2    int32 `yaml:"effect2,omitempty"`
	Effect3    int32 `yaml:"effect3,omitempty"`
	EffectMana int32 `yaml:"effect_mana,omitempty"`

	// Costs. 0 means unset and is skipped.
	ManaCost int32 `yaml:"mana_cost,omitempty"`
	ThewCost int32 `yaml:"thew_cost,omitempty"`
	LifeCost int32 `yaml:"life_cost,omitempty"`

	Region       RegionShape `yaml:"region,omitempty"`
	RegionRadius int32       `yaml:"region_radius,omitempty"` // in tiles

	Speed  float64 `yaml:"speed,omitempty"`  // units per second
	Range  float64 `yaml:"range,omitempty"`  // max travel distance
	LifeMs int32   `yaml:"life_ms,omitempty"` // sprite lifetime
	Radius float64 `yaml:"radius,omitempty"` // collision radius

	CastSound   string `yaml:"cast_sound,omitempty"`
	VanishSound string `yaml:"vanish_sound,omitempty"`

	LeapTimes        int32   `yaml:"leap_times,omitempty"`
	LeapDecayPercent int32   `yaml:"leap_decay_percent,omitempty"`
	LeapRange        float64 `yaml:"leap_range,omitempty"`

	TrailKeepMs  int32   `yaml:"trail_keep_ms,omitempty"`
	TrailSpacing float64 `yaml:"trail_spacing,omitempty"`

	NpcFile         string `yaml:"npc_file,omitempty"`
	FlyIni          string `yaml:"fly_ini,omitempty"`
	ChangeCharacter string `yaml:"change_character,omitempty"`
	MaxLevel        int32  `yaml:"max_level,omitempty"`

	BuffMs        int32 `yaml:"buff_ms,omitempty"`
	InvisibleMs   int32 `yaml:"invisible_ms,omitempty"`
	TransformMs   int32 `yaml:"transform_ms,omitempty"`
	AttackPercent int32 `yaml:"attack_percent,omitempty"`
	DefenseBonus  int32 `yaml:"defense_bonus,omitempty"`

	PassThrough bool `yaml:"pass_through,omitempty"`
}

// IsLeaping reports whether the spell bounces across targets.
func (s *SpellDefinition) IsLeaping() bool {
	return s.LeapTimes > 0
}

// MaxSpellRange — верхняя граница Range и LeapRange в мировых единицах.
const MaxSpellRange = 16384.0

// Validate checks catalog-level consistency.
func (s *SpellDefinition) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("spell without id")
	}
	if s.LeapDecayPercent < 0 || s.LeapDecayPercent > 100 {
		return fmt.Errorf("spell %s: leap_decay_percent %d out of [0,100]", s.ID, s.LeapDecayPercent)
	}
	if s.Speed < 0 || s.Range < 0 || s.Radius < 0 {
		return fmt.Errorf("spell %s: negative speed, range or radius", s.ID)
	}
	if s.LeapRange < 0 {
		return fmt.Errorf("spell %s: negative leap_range", s.ID)
	}
	if s.Range > MaxSpellRange || s.LeapRange > MaxSpellRange {
		return fmt.Errorf("spell %s: range or leap_range above %.0f", s.ID, MaxSpellRange)
	}
	if s.MoveKind == MoveTrailing && s.TrailKeepMs <= 0 {
		return fmt.Errorf("spell %s: trailing spell needs trail_keep_ms", s.ID)
	}
	return nil
}
