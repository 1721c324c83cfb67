package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/udisondev/magic2d/internal/ai"
	"github.com/udisondev/magic2d/internal/data"
	"github.com/udisondev/magic2d/internal/game/magic"
	"github.com/udisondev/magic2d/internal/model"
	"github.com/udisondev/magic2d/internal/world"
)

const (
	arenaWidth  = 2048
	arenaHeight = 1536

	heroCastIntervalMs   = 700
	allyCastIntervalMs   = 1100
	shamanCastIntervalMs = 1500

	manaRegenPerSecond = 6

	// npcSpellPrefix marks catalog spells reserved for hostile casters.
	npcSpellPrefix = "npc_"
)

var (
	goblinTemplate = world.NpcTemplate{Name: "Goblin", Level: 3, LifeMax: 90, ManaMax: 20, ThewMax: 40, Kind: model.NpcKindFighter}
	shamanTemplate = world.NpcTemplate{Name: "Goblin Shaman", Level: 6, LifeMax: 140, ManaMax: 400, ThewMax: 40, Kind: model.NpcKindFighter}
	wispTemplate   = world.NpcTemplate{Name: "Wisp", Level: 4, LifeMax: 80, ManaMax: 200, ThewMax: 60, Kind: model.NpcKindFollower}
	wolfTemplate   = world.NpcTemplate{Name: "Spirit Wolf", Level: 5, LifeMax: 120, ManaMax: 0, ThewMax: 80, Kind: model.NpcKindFighter}
)

// demoArena — сцена симуляции: герой с союзником против волн гоблинов.
// Implements ai.Updater: убирает трупы, реген маны, новые волны.
type demoArena struct {
	world   *world.World
	hero    *model.Player
	ally    *model.Npc
	shaman  *model.Npc
	catalog *data.Catalog

	controllers []*ai.CasterAI
	regenMs     int32

	waves        atomic.Int32
	enemiesAlive atomic.Int32
}

func newDemoArena(catalog *data.Catalog) (*demoArena, error) {
	w := world.New(arenaWidth, arenaHeight)
	w.SetLogger(slog.Default())
	w.RegisterTemplate("wolf.ini", wolfTemplate)
	w.RegisterTemplate("wisp.ini", wispTemplate)

	// Колонны посреди арены, о них разбиваются снаряды.
	w.AddWall(world.Wall{Min: model.NewVec2(960, 300), Max: model.NewVec2(1000, 500)})
	w.AddWall(world.Wall{Min: model.NewVec2(960, 1036), Max: model.NewVec2(1000, 1236)})

	hero, err := w.AddPlayer("Hero", model.NewVec2(400, 768), 12, 400, 300, 200)
	if err != nil {
		return nil, err
	}
	ally, err := w.AddNpc(wispTemplate, model.NewVec2(360, 700), model.RelationFriend)
	if err != nil {
		return nil, err
	}
	shaman, err := w.AddNpc(shamanTemplate, model.NewVec2(1700, 768), model.RelationEnemy)
	if err != nil {
		return nil, err
	}

	a := &demoArena{
		world:   w,
		hero:    hero,
		ally:    ally,
		shaman:  shaman,
		catalog: catalog,
	}
	if err := a.spawnWave(); err != nil {
		return nil, err
	}
	return a, nil
}

// casters builds AI controllers for the hero, the ally and the shaman.
func (a *demoArena) casters(mgr *magic.Manager) []ai.Controller {
	var heroSpells, npcSpells []string
	for _, id := range a.catalog.IDs() {
		if strings.HasPrefix(id, npcSpellPrefix) {
			npcSpells = append(npcSpells, id)
			continue
		}
		heroSpells = append(heroSpells, id)
	}

	a.controllers = []*ai.CasterAI{
		ai.NewCasterAI(model.PlayerRef(a.hero), mgr, a.world, heroSpells, heroCastIntervalMs),
		ai.NewCasterAI(model.NpcRef(a.ally), mgr, a.world, npcSpells, allyCastIntervalMs),
		ai.NewCasterAI(model.NpcRef(a.shaman), mgr, a.world, npcSpells, shamanCastIntervalMs),
	}

	result := make([]ai.Controller, 0, len(a.controllers))
	for _, c := range a.controllers {
		result = append(result, c)
	}
	return result
}

// Update runs arena housekeeping once per tick.
func (a *demoArena) Update(deltaMs int32) {
	a.world.TickStatus(deltaMs)

	a.regenMs += deltaMs
	for a.regenMs >= 1000 {
		a.regenMs -= 1000
		a.hero.SetMana(a.hero.Mana() + manaRegenPerSecond)
	}

	if a.hero.IsDeath() {
		a.hero.SetLife(a.hero.LifeMax())
		a.hero.SetMana(a.hero.ManaMax())
		slog.Info("hero revived", "wave", a.waves.Load())
	}

	if removed := a.world.RemoveDeadNpcs(); removed > 0 && ai.IsDebugEnabled() {
		slog.Debug("corpses removed", "count", removed)
	}

	alive := a.world.CountAlive(model.RelationEnemy)
	if alive == 0 {
		if err := a.spawnWave(); err != nil {
			slog.Warn("spawning wave failed", "err", err)
		}
		alive = a.world.CountAlive(model.RelationEnemy)
	}
	a.enemiesAlive.Store(int32(alive))
}

func (a *demoArena) spawnWave() error {
	wave := a.waves.Add(1)
	count := 3 + int(wave%4)
	for i := range count {
		pos := model.NewVec2(1300+float64(i%2)*150, 300+float64(i)*180)
		if _, err := a.world.AddNpc(goblinTemplate, pos, model.RelationEnemy); err != nil {
			return fmt.Errorf("spawning goblin %d of wave %d: %w", i, wave, err)
		}
	}
	slog.Info("wave spawned", "wave", wave, "goblins", count)
	return nil
}

// Waves returns the number of spawned waves.
func (a *demoArena) Waves() int32 {
	return a.waves.Load()
}

// EnemiesAlive returns the hostile count seen on the last tick.
func (a *demoArena) EnemiesAlive() int32 {
	return a.enemiesAlive.Load()
}

func (a *demoArena) castStats() (casts, rejected int32) {
	for _, c := range a.controllers {
		casts += c.Casts()
		rejected += c.Rejected()
	}
	return casts, rejected
}
