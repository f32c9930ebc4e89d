package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"designpad/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// memStore implements both DesignStore and ShareStore for in-memory storage.
// Each store instance holds its own maps, so independent stores (and tests)
// never share state.
type memStore struct {
	mu sync.RWMutex
	// designs is keyed by userID, then by designID.
	designs map[string]map[string]*core.Design
	shares  map[string]*core.SharedDesign
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{
		designs: make(map[string]map[string]*core.Design),
		shares:  make(map[string]*core.SharedDesign),
	}
}

// FindID retrieves a shared archive by its ID. Part of the ShareStore interface.
func (s *memStore) FindID(ctx context.Context, id string) (*core.SharedDesign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := logrus.WithField("share_id", id)
	if val, ok := s.shares[id]; ok {
		log.Info("Shared design retrieved successfully")
		return val, nil
	}
	log.WithField("error", "share not found").Warn("Shared design with specified ID not found")
	return nil, fmt.Errorf("shared design with id %s not found", id)
}

// Create stores a new shared archive. Part of the ShareStore interface.
func (s *memStore) Create(ctx context.Context, shared *core.SharedDesign) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	s.shares[id] = shared
	logrus.WithFields(logrus.Fields{
		"share_id":    id,
		"data_length": len(shared.Data),
	}).Info("Shared design created successfully")

	return id, nil
}

// List returns metadata for all designs owned by a user. Part of the DesignStore interface.
func (s *memStore) List(ctx context.Context, userID string) ([]*core.Design, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userDesigns, ok := s.designs[userID]
	if !ok {
		return []*core.Design{}, nil // No designs for this user, return empty slice
	}

	designs := make([]*core.Design, 0, len(userDesigns))
	for _, d := range userDesigns {
		// Important: create a copy without the large Data field for the list view
		designs = append(designs, &core.Design{
			ID:        d.ID,
			UserID:    d.UserID,
			Name:      d.Name,
			Thumbnail: d.Thumbnail,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}

	logrus.WithField("user_id", userID).Infof("Listed %d designs", len(designs))
	return designs, nil
}

// Get returns a single design by its ID, ensuring it belongs to the user. Part of the DesignStore interface.
func (s *memStore) Get(ctx context.Context, userID, id string) (*core.Design, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := logrus.WithFields(logrus.Fields{"user_id": userID, "design_id": id})

	userDesigns, ok := s.designs[userID]
	if !ok {
		log.Warn("User has no designs")
		return nil, fmt.Errorf("design with id %s not found for user %s", id, userID)
	}

	design, ok := userDesigns[id]
	if !ok {
		log.Warn("Design not found for user")
		return nil, fmt.Errorf("design with id %s not found for user %s", id, userID)
	}

	log.Info("Design retrieved successfully")
	return design, nil
}

// Save creates or updates a design for a user. Part of the DesignStore interface.
func (s *memStore) Save(ctx context.Context, design *core.Design) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"user_id": design.UserID, "design_id": design.ID})

	if design.UserID == "" {
		return fmt.Errorf("UserID cannot be empty")
	}
	if design.ID == "" {
		return fmt.Errorf("design ID cannot be empty for save operation")
	}

	userDesigns, ok := s.designs[design.UserID]
	if !ok {
		userDesigns = make(map[string]*core.Design)
		s.designs[design.UserID] = userDesigns
	}

	now := time.Now()
	if existing, exists := userDesigns[design.ID]; exists {
		design.CreatedAt = existing.CreatedAt
	} else {
		design.CreatedAt = now
	}
	design.UpdatedAt = now

	userDesigns[design.ID] = design
	log.Info("Design saved successfully")
	return nil
}

// Delete removes a design, ensuring it belongs to the user. Part of the DesignStore interface.
func (s *memStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"user_id": userID, "design_id": id})

	userDesigns, ok := s.designs[userID]
	if !ok {
		log.Warn("User has no designs to delete from")
		return fmt.Errorf("user %s has no designs", userID)
	}

	if _, ok := userDesigns[id]; !ok {
		log.Warn("Design not found for deletion")
		return fmt.Errorf("design with id %s not found for user %s", id, userID)
	}

	delete(userDesigns, id)
	log.Info("Design deleted successfully")
	return nil
}
