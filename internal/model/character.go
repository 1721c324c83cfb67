package model

import "math/rand/v2"

// MinimalDamage — нижняя граница урона по цели после защиты.
// Применяется только если хотя бы один канал урона ненулевой.
const MinimalDamage int32 = 5

// maxEvadeChance caps the miss chance so that evasion never makes a target immune.
const maxEvadeChance = 90

// rollPercent returns a uniform value in [0, 100). Replaced in tests.
var rollPercent = func() int { return rand.IntN(100) }

// Relation определяет сторону персонажа в бою.
type Relation int8

const (
	RelationNeutral Relation = iota // Never an enemy of anyone
	RelationFriend                  // Player side
	RelationEnemy                   // Hostile to the player side
)

// DamageChannels — сырые каналы урона, которые магия передаёт цели.
// Effect..Effect3 режутся соответствующими defense, Mana бьёт по мане напрямую.
type DamageChannels struct {
	Effect  int32
	Effect2 int32
	Effect3 int32
	Mana    int32
}

// IsZero reports whether no channel carries any damage.
func (d DamageChannels) IsZero() bool {
	return d.Effect <= 0 && d.Effect2 <= 0 && d.Effect3 <= 0 && d.Mana <= 0
}

// Character — базовый класс для живых существ (Player, Npc).
// Добавляет life/mana/thew, атаку, защиту и статусы к WorldObject.
//
// Все сеттеры статов делают clamp в [0, max]; прямой записи в поля нет.
type Character struct {
	*WorldObject // embedded

	level   int32
	life    int32
	lifeMax int32
	mana    int32
	manaMax int32
	thew    int32
	thewMax int32

	attack  [3]int32
	defense [3]int32
	evade   int32

	// Equipment bonuses applied to magic effect channels.
	magicEffectPercent int32
	magicEffectAmount  int32

	relation     Relation
	baseRelation Relation
	fighting     bool
	controlledBy uint32

	flyIni string

	status *Status
}

// NewCharacter создаёт нового персонажа с указанными максимальными значениями.
// Текущие life/mana/thew устанавливаются равными максимальным.
func NewCharacter(objectID uint32, name string, pos Vec2, level, lifeMax, manaMax, thewMax int32) *Character {
	c := &Character{
		WorldObject: NewWorldObject(objectID, name, pos),
		level:       level,
		relation:    RelationNeutral,
		status:      NewStatus(),
	}
	c.lifeMax = max(lifeMax, 1)
	c.manaMax = max(manaMax, 0)
	c.thewMax = max(thewMax, 0)
	c.life = c.lifeMax
	c.mana = c.manaMax
	c.thew = c.thewMax
	return c
}

// Level возвращает уровень персонажа.
func (c *Character) Level() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// SetLevel sets the character level (minimum 1).
func (c *Character) SetLevel(level int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.level = max(level, 1)
}

// Life возвращает текущее life.
func (c *Character) Life() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.life
}

// LifeMax возвращает максимальное life.
func (c *Character) LifeMax() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lifeMax
}

// SetLife устанавливает текущее life с валидацией (clamp 0..lifeMax).
func (c *Character) SetLife(life int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.life = clamp(life, 0, c.lifeMax)
}

// SetLifeMax устанавливает максимальное life и корректирует текущее если нужно.
func (c *Character) SetLifeMax(lifeMax int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lifeMax = max(lifeMax, 1)
	// Если текущее life больше нового максимума — обрезаем
	if c.life > c.lifeMax {
		c.life = c.lifeMax
	}
}

// Mana возвращает текущую ману.
func (c *Character) Mana() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mana
}

// ManaMax возвращает максимальную ману.
func (c *Character) ManaMax() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manaMax
}

// SetMana устанавливает текущую ману с валидацией (clamp 0..manaMax).
func (c *Character) SetMana(mana int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mana = clamp(mana, 0, c.manaMax)
}

// SetManaMax устанавливает максимальную ману и корректирует текущую если нужно.
func (c *Character) SetManaMax(manaMax int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.manaMax = max(manaMax, 0)
	if c.mana > c.manaMax {
		c.mana = c.manaMax
	}
}

// Thew возвращает текущую выносливость.
func (c *Character) Thew() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.thew
}

// ThewMax возвращает максимальную выносливость.
func (c *Character) ThewMax() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.thewMax
}

// SetThew устанавливает выносливость с валидацией (clamp 0..thewMax).
func (c *Character) SetThew(thew int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thew = clamp(thew, 0, c.thewMax)
}

// SetThewMax устанавливает максимальную выносливость и корректирует текущую если нужно.
func (c *Character) SetThewMax(thewMax int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.thewMax = max(thewMax, 0)
	if c.thew > c.thewMax {
		c.thew = c.thewMax
	}
}

// IsDeath returns true if life is zero.
func (c *Character) IsDeath() bool {
	return c.Life() <= 0
}

// Attack returns the attack value of channel i (0..2). Out of range returns 0.
func (c *Character) Attack(i int) int32 {
	if i < 0 || i >= len(c.attack) {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attack[i]
}

// SetAttack sets attack values for the three channels.
func (c *Character) SetAttack(a1, a2, a3 int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attack = [3]int32{max(a1, 0), max(a2, 0), max(a3, 0)}
}

// Defense returns the defense value of channel i (0..2), including buff bonuses on channel 0.
func (c *Character) Defense(i int) int32 {
	if i < 0 || i >= len(c.defense) {
		return 0
	}
	c.mu.RLock()
	d := c.defense[i]
	c.mu.RUnlock()
	if i == 0 {
		d += c.status.DefenseBonus()
	}
	return d
}

// SetDefense sets defense values for the three channels.
func (c *Character) SetDefense(d1, d2, d3 int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defense = [3]int32{max(d1, 0), max(d2, 0), max(d3, 0)}
}

// Evade returns the evasion stat.
func (c *Character) Evade() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.evade
}

// SetEvade sets the evasion stat (minimum 0).
func (c *Character) SetEvade(evade int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evade = max(evade, 0)
}

// MagicEffectBonus returns equipment bonuses for magic: percent and flat amount.
func (c *Character) MagicEffectBonus() (percent, amount int32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.magicEffectPercent, c.magicEffectAmount
}

// SetMagicEffectBonus sets equipment magic bonuses.
func (c *Character) SetMagicEffectBonus(percent, amount int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.magicEffectPercent = percent
	c.magicEffectAmount = amount
}

// Relation returns the current allegiance.
func (c *Character) Relation() Relation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.relation
}

// SetRelation sets both current and base allegiance.
func (c *Character) SetRelation(r Relation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.relation = r
	c.baseRelation = r
}

// IsFighting reports whether the character is engaged in combat.
func (c *Character) IsFighting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fighting
}

// SetFighting sets the in-combat flag.
func (c *Character) SetFighting(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fighting = v
}

// IsEnemyOf reports whether c and other fight on opposite sides.
// Neutral characters are nobody's enemy.
func (c *Character) IsEnemyOf(other *Character) bool {
	if other == nil || other == c {
		return false
	}
	a, b := c.Relation(), other.Relation()
	if a == RelationNeutral || b == RelationNeutral {
		return false
	}
	return a != b
}

// ControlledBy returns the objectID of the controlling character, 0 if free.
func (c *Character) ControlledBy() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.controlledBy
}

// SetControlledBy puts the character under control of a character of relation r.
// Passing controller 0 releases control and restores the base relation.
func (c *Character) SetControlledBy(controller uint32, r Relation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controlledBy = controller
	if controller == 0 {
		c.relation = c.baseRelation
		return
	}
	c.relation = r
}

// Status returns the status effect state attached to this character.
func (c *Character) Status() *Status {
	return c.status
}

// FlyIni returns the active projectile spell id: status override first, then base.
func (c *Character) FlyIni() string {
	if s := c.status.FlyIni(); s != "" {
		return s
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flyIni
}

// SetFlyIni sets the base projectile spell id.
func (c *Character) SetFlyIni(spellID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flyIni = spellID
}

// AddMagicSpriteInEffect attaches a buff. A buff with the same name already attached
// is reset and kept instead of stacking. Returns the buff that is active afterwards
// and whether b was newly attached.
func (c *Character) AddMagicSpriteInEffect(b Buff) (Buff, bool) {
	return c.status.addBuff(b)
}

// RemoveMagicSpriteInEffect detaches a buff. No-op if not attached.
func (c *Character) RemoveMagicSpriteInEffect(b Buff) {
	c.status.removeBuff(b)
}

// ChangeCharacterBy transforms the character into handle for durationMs.
// Re-applying the same handle extends the timer.
func (c *Character) ChangeCharacterBy(handle string, durationMs int32) {
	c.status.setTransform(handle, durationMs)
}

// RemoveAbnormalState clears poison, freeze and petrification.
func (c *Character) RemoveAbnormalState() {
	c.status.clearAbnormal()
}

// FlyIniChangeBy swaps the active projectile definition.
func (c *Character) FlyIniChangeBy(spellID string, durationMs int32) {
	c.status.setFlyIni(spellID, durationMs)
}

// TakeMagicDamage applies raw damage channels from attacker.
// Order: evasion roll, per-channel defense, MinimalDamage floor, mana damage.
// Returns net life damage, 0 on a miss or when channels are empty.
func (c *Character) TakeMagicDamage(attacker *Character, ch DamageChannels) int32 {
	if c.IsDeath() || ch.IsZero() {
		return 0
	}

	var attackerEvade int32
	if attacker != nil {
		attackerEvade = attacker.Evade()
	}
	if chance := evadeChance(attackerEvade, c.Evade()); chance > 0 && rollPercent() < chance {
		return 0
	}

	damage := max(ch.Effect-c.Defense(0), 0) +
		max(ch.Effect2-c.Defense(1), 0) +
		max(ch.Effect3-c.Defense(2), 0)
	if ch.Effect > 0 || ch.Effect2 > 0 || ch.Effect3 > 0 {
		damage = max(damage, MinimalDamage)
	}

	c.mu.Lock()
	c.life = clamp(c.life-damage, 0, c.lifeMax)
	if ch.Mana > 0 {
		c.mana = clamp(c.mana-ch.Mana, 0, c.manaMax)
	}
	c.mu.Unlock()

	return damage
}

// evadeChance returns the miss percentage of an attack.
func evadeChance(attackerEvade, targetEvade int32) int {
	if targetEvade <= 0 {
		return 0
	}
	chance := int(targetEvade) * 100 / int(targetEvade+attackerEvade+100)
	return min(chance, maxEvadeChance)
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
