package model

import "sync"

// WorldObject — базовый класс для всех объектов на карте.
// Все объекты имеют ObjectID, Name и Position.
type WorldObject struct {
	objectID uint32
	name     string
	position Vec2

	mu sync.RWMutex
}

// NewWorldObject создаёт новый объект на карте.
func NewWorldObject(objectID uint32, name string, pos Vec2) *WorldObject {
	return &WorldObject{
		objectID: objectID,
		name:     name,
		position: pos,
	}
}

// ObjectID возвращает уникальный ID объекта (immutable после создания).
func (w *WorldObject) ObjectID() uint32 {
	return w.objectID
}

// Name возвращает имя объекта.
func (w *WorldObject) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

// Position возвращает копию координат объекта (value type).
func (w *WorldObject) Position() Vec2 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.position
}

// SetPosition устанавливает новые координаты объекта.
func (w *WorldObject) SetPosition(pos Vec2) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.position = pos
}
