package model

// Buff is a persistent attached effect (a magic sprite living "in effect" on a character).
// Implemented by the magic package; model only tracks handles.
type Buff interface {
	BuffName() string
	// ResetLifetime restarts the buff timer when the same buff is applied again.
	ResetLifetime()
	AttackPercent() int32
	DefenseBonus() int32
}

// AbnormalKind enumerates negative states removed by purification.
type AbnormalKind int8

const (
	AbnormalPoison AbnormalKind = iota
	AbnormalFrozen
	AbnormalPetrified
	abnormalCount
)

// Status — состояние статус-эффектов персонажа.
// Таймеры уменьшает владелец персонажа через Tick, магическое ядро только
// создаёт и продлевает их.
//
// Not synchronized: owned by the simulation goroutine.
type Status struct {
	invisibleMs     int32
	visibleOnAttack bool

	transformMs     int32
	transformHandle string

	flyIniMs int32
	flyIni   string

	abnormalMs [abnormalCount]int32

	buffs []Buff
}

// NewStatus creates an empty Status.
func NewStatus() *Status {
	return &Status{buffs: make([]Buff, 0, 4)}
}

// SetInvisible makes the character invisible for durationMs.
// If visibleOnAttack is set, the next attack breaks invisibility.
func (s *Status) SetInvisible(durationMs int32, visibleOnAttack bool) {
	s.invisibleMs = max(s.invisibleMs, durationMs)
	s.visibleOnAttack = visibleOnAttack
}

// IsInvisible reports whether the invisibility timer is running.
func (s *Status) IsInvisible() bool {
	return s.invisibleMs > 0
}

// OnAttack is called when the character deals damage.
func (s *Status) OnAttack() {
	if s.invisibleMs > 0 && s.visibleOnAttack {
		s.invisibleMs = 0
		s.visibleOnAttack = false
	}
}

// TransformHandle returns the active transformation, empty if none.
func (s *Status) TransformHandle() string {
	if s.transformMs <= 0 {
		return ""
	}
	return s.transformHandle
}

func (s *Status) setTransform(handle string, durationMs int32) {
	if handle == s.transformHandle && s.transformMs > 0 {
		s.transformMs = max(s.transformMs, durationMs)
		return
	}
	s.transformHandle = handle
	s.transformMs = durationMs
}

// FlyIni returns the projectile override, empty if none.
func (s *Status) FlyIni() string {
	if s.flyIniMs <= 0 {
		return ""
	}
	return s.flyIni
}

func (s *Status) setFlyIni(spellID string, durationMs int32) {
	s.flyIni = spellID
	s.flyIniMs = durationMs
}

// SetAbnormal starts (or extends) an abnormal state.
func (s *Status) SetAbnormal(kind AbnormalKind, durationMs int32) {
	if kind < 0 || kind >= abnormalCount {
		return
	}
	s.abnormalMs[kind] = max(s.abnormalMs[kind], durationMs)
}

// HasAbnormal reports whether the abnormal state is active.
func (s *Status) HasAbnormal(kind AbnormalKind) bool {
	if kind < 0 || kind >= abnormalCount {
		return false
	}
	return s.abnormalMs[kind] > 0
}

func (s *Status) clearAbnormal() {
	s.abnormalMs = [abnormalCount]int32{}
}

// Buffs returns a copy of the attached buffs.
func (s *Status) Buffs() []Buff {
	result := make([]Buff, len(s.buffs))
	copy(result, s.buffs)
	return result
}

// AttackPercent sums attack bonuses of all attached buffs.
func (s *Status) AttackPercent() int32 {
	var total int32
	for _, b := range s.buffs {
		total += b.AttackPercent()
	}
	return total
}

// DefenseBonus sums defense bonuses of all attached buffs.
func (s *Status) DefenseBonus() int32 {
	var total int32
	for _, b := range s.buffs {
		total += b.DefenseBonus()
	}
	return total
}

// addBuff attaches b or resets an existing buff with the same name.
func (s *Status) addBuff(b Buff) (Buff, bool) {
	for _, existing := range s.buffs {
		if existing.BuffName() == b.BuffName() {
			existing.ResetLifetime()
			return existing, false
		}
	}
	s.buffs = append(s.buffs, b)
	return b, true
}

func (s *Status) removeBuff(b Buff) {
	n := 0
	for _, existing := range s.buffs {
		if existing != b {
			s.buffs[n] = existing
			n++
		}
	}
	clear(s.buffs[n:])
	s.buffs = s.buffs[:n]
}

// Tick decrements all timers by deltaMs.
func (s *Status) Tick(deltaMs int32) {
	s.invisibleMs = max(s.invisibleMs-deltaMs, 0)
	if s.invisibleMs == 0 {
		s.visibleOnAttack = false
	}

	s.transformMs = max(s.transformMs-deltaMs, 0)
	if s.transformMs == 0 {
		s.transformHandle = ""
	}

	s.flyIniMs = max(s.flyIniMs-deltaMs, 0)
	if s.flyIniMs == 0 {
		s.flyIni = ""
	}

	for i := range s.abnormalMs {
		s.abnormalMs[i] = max(s.abnormalMs[i]-deltaMs, 0)
	}
}
