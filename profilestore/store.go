// Package profilestore is an in-memory store of validated profiles,
// keyed by user_id and indexed by lowercased username.
package profilestore

import (
	"strings"
	"sync"
	"time"

	"github.com/lithictech/go-profiles/convext"
	"github.com/lithictech/go-profiles/logctx"
	"github.com/lithictech/go-profiles/profile"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Store holds profiles by id, and an index from username key to id.
// Both maps, and the insertion order used for iteration,
// change together under mu.
type Store struct {
	validator profile.Validator
	now       func() time.Time
	logger    *logrus.Entry

	mu    sync.RWMutex
	byID  map[int]profile.Profile
	byKey map[string]int
	order []int
}

type Option func(*Store)

// WithLogger sets the logger mutations are logged to.
func WithLogger(logger *logrus.Entry) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock sets the function used to stamp updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(v profile.Validator, opts ...Option) *Store {
	s := &Store{
		validator: v,
		now:       time.Now,
		byID:      map[int]profile.Profile{},
		byKey:     map[string]int{},
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = logctx.UnconfiguredLogger()
	}
	return s
}

// Key returns the index key for a username.
func Key(username string) string {
	return strings.ToLower(username)
}

// Create validates raw and stores the resulting profile.
// Validation errors are returned as-is. A taken user_id is ErrDuplicateIdentifier,
// a taken username is ErrDuplicateKey. Nothing is stored on error.
func (s *Store) Create(raw map[string]interface{}) (profile.Profile, error) {
	p, err := s.validator.Validate(raw)
	if err != nil {
		return profile.Profile{}, err
	}
	key := Key(p.Username)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.UserID]; ok {
		return profile.Profile{}, errors.Wrapf(ErrDuplicateIdentifier, "user_id %d", p.UserID)
	}
	if _, ok := s.byKey[key]; ok {
		return profile.Profile{}, errors.Wrapf(ErrDuplicateKey, "username %q", p.Username)
	}
	s.byID[p.UserID] = p
	s.byKey[key] = p.UserID
	s.order = append(s.order, p.UserID)
	s.logger.WithFields(logrus.Fields{"user_id": p.UserID, "username": p.Username}).Debug("profile_created")
	return p.Clone(), nil
}

func (s *Store) Get(id int) (profile.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return profile.Profile{}, false
	}
	return p.Clone(), true
}

// GetByUsername finds a profile by username, ignoring case.
func (s *Store) GetByUsername(username string) (profile.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[Key(username)]
	if !ok {
		return profile.Profile{}, false
	}
	return s.byID[id].Clone(), true
}

// Update overlays partial onto the fields of profile id,
// stamps updated_at, and re-validates the result.
// Keys in partial win over existing fields, including explicit nulls.
// ErrNotFound if id is not stored, ErrDuplicateKey if the new username
// belongs to another profile, or the validation error.
// The stored profile is unchanged unless the whole update succeeds.
func (s *Store) Update(id int, partial map[string]interface{}) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[id]
	if !ok {
		return profile.Profile{}, errors.Wrapf(ErrNotFound, "user_id %d", id)
	}
	oldKey := Key(current.Username)
	if username, ok := partial["username"].(string); ok {
		if err := s.checkKeyFree(Key(username), id); err != nil {
			return profile.Profile{}, err
		}
	}

	base, err := convext.ToObject(current)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "converting stored profile")
	}
	merged := convext.Overlay(base, partial)
	merged["updated_at"] = s.now()

	updated, err := s.validator.Validate(merged)
	if err != nil {
		return profile.Profile{}, err
	}
	if updated.UserID != id {
		return profile.Profile{}, profile.NewValidationError("user_id", "user_id is immutable")
	}
	newKey := Key(updated.Username)
	if newKey != oldKey {
		if err := s.checkKeyFree(newKey, id); err != nil {
			return profile.Profile{}, err
		}
		delete(s.byKey, oldKey)
		s.byKey[newKey] = id
	}
	s.byID[id] = updated
	s.logger.WithFields(logrus.Fields{
		"user_id":     id,
		"username":    updated.Username,
		"update_keys": convext.SortedObjectKeys(partial),
	}).Debug("profile_updated")
	return updated.Clone(), nil
}

func (s *Store) checkKeyFree(key string, id int) error {
	if owner, taken := s.byKey[key]; taken && owner != id {
		return errors.Wrapf(ErrDuplicateKey, "username %q", key)
	}
	return nil
}

// Delete removes profile id, and returns false if it was not stored.
func (s *Store) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	delete(s.byKey, Key(p.Username))
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.logger.WithFields(logrus.Fields{"user_id": id, "username": p.Username}).Debug("profile_deleted")
	return true
}

// Search returns every profile matching c, in insertion order.
func (s *Store) Search(c Criteria) []profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]profile.Profile, 0)
	for _, id := range s.order {
		p := s.byID[id]
		if c.Matches(p) {
			result = append(result, p.Clone())
		}
	}
	return result
}

// All returns every profile in insertion order.
func (s *Store) All() []profile.Profile {
	return s.Search(Criteria{})
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Statistics summarizes the stored profiles.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]profile.Profile, 0, len(s.order))
	for _, id := range s.order {
		profiles = append(profiles, s.byID[id])
	}
	return NewStatistics(profiles)
}
