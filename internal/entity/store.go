package entity

import "support-bot/internal/models"

// Store accumulates entities across turns. A later value replaces an earlier
// one of the same type; nothing expires. Not safe for concurrent use.
type Store struct {
	values models.Entities
}

func NewStore() *Store {
	return &Store{values: make(models.Entities)}
}

// Merge copies found into the store.
func (s *Store) Merge(found models.Entities) {
	for k, v := range found {
		s.values[k] = v
	}
}

// Get returns the stored value for an entity type.
func (s *Store) Get(entityType string) (models.EntityValue, bool) {
	v, ok := s.values[entityType]
	return v, ok
}

// Snapshot returns a copy of the stored entities.
func (s *Store) Snapshot() models.Entities {
	return s.values.Clone()
}

func (s *Store) Len() int { return len(s.values) }

// Clear empties the store.
func (s *Store) Clear() {
	s.values = make(models.Entities)
}
