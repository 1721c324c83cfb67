package ai

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// TickManager advances every controller and then every system once per tick.
// Controllers tick in registration order so that runs are reproducible.
type TickManager struct {
	mu          sync.Mutex
	controllers []Controller
	byID        map[uint32]Controller
	systems     []Updater

	tickMs int32
	ticks  int
}

// NewTickManager creates a tick manager with a fixed step.
func NewTickManager(tickMs int32, systems ...Updater) *TickManager {
	return &TickManager{
		byID:    make(map[uint32]Controller),
		systems: systems,
		tickMs:  max(tickMs, 1),
	}
}

// Register registers and starts a controller.
func (m *TickManager) Register(c Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := c.Character().ID()
	if old, ok := m.byID[id]; ok {
		old.Stop()
		m.controllers = slices.DeleteFunc(m.controllers, func(x Controller) bool { return x == old })
	}
	m.byID[id] = c
	m.controllers = append(m.controllers, c)
	c.Start()

	slog.Debug("AI controller registered", "objectID", id)
}

// Unregister stops and removes the controller of objectID.
func (m *TickManager) Unregister(objectID uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byID[objectID]
	if !ok {
		return
	}
	delete(m.byID, objectID)
	m.controllers = slices.DeleteFunc(m.controllers, func(x Controller) bool { return x == c })
	c.Stop()

	slog.Debug("AI controller unregistered", "objectID", objectID)
}

// Count returns number of registered controllers.
func (m *TickManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.controllers)
}

// GetController returns the controller of objectID.
func (m *TickManager) GetController(objectID uint32) (Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byID[objectID]
	if !ok {
		return nil, fmt.Errorf("controller not found for objectID %d", objectID)
	}
	return c, nil
}

// Ticks returns the number of completed ticks.
func (m *TickManager) Ticks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

// Tick advances the simulation by one fixed step.
func (m *TickManager) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.controllers {
		c.Tick(m.tickMs)
	}
	for _, s := range m.systems {
		s.Update(m.tickMs)
	}
	m.ticks++
}

// Start runs the tick loop in real time (blocks until context is canceled).
// maxTicks > 0 stops the loop after that many ticks and returns nil.
func (m *TickManager) Start(ctx context.Context, maxTicks int) error {
	ticker := time.NewTicker(time.Duration(m.tickMs) * time.Millisecond)
	defer ticker.Stop()

	slog.Info("tick manager started", "tick_ms", m.tickMs, "max_ticks", maxTicks)

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick manager stopping", "ticks", m.Ticks())
			return ctx.Err()

		case <-ticker.C:
			m.Tick()
			if maxTicks > 0 && m.Ticks() >= maxTicks {
				slog.Info("tick manager finished", "ticks", maxTicks)
				return nil
			}
		}
	}
}
