package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"designpad/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store. Shared archives live under
// <base>/shares, user designs under <base>/designs/<userID>.
func NewStore(basePath string) *fsStore {
	for _, dir := range []string{basePath, filepath.Join(basePath, "shares"), filepath.Join(basePath, "designs")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create storage directory: %v", err)
		}
	}
	return &fsStore{basePath: basePath}
}

// ShareStore implementation for anonymous sharing
func (s *fsStore) FindID(ctx context.Context, id string) (*core.SharedDesign, error) {
	filePath := filepath.Join(s.basePath, "shares", id)
	log := logrus.WithField("share_id", id)

	log.WithField("file_path", filePath).Info("Retrieving shared design by ID")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("error", "share not found").Warn("Shared design with specified ID not found")
			return nil, fmt.Errorf("shared design with id %s not found", id)
		}
		log.WithError(err).Error("Failed to retrieve shared design")
		return nil, err
	}

	log.Info("Shared design retrieved successfully")
	return &core.SharedDesign{Data: data}, nil
}

func (s *fsStore) Create(ctx context.Context, shared *core.SharedDesign) (string, error) {
	id := ulid.Make().String()
	filePath := filepath.Join(s.basePath, "shares", id)
	log := logrus.WithFields(logrus.Fields{
		"share_id":  id,
		"file_path": filePath,
	})
	log.Info("Creating new shared design")

	if err := os.WriteFile(filePath, shared.Data, 0644); err != nil {
		log.WithError(err).Error("Failed to create shared design")
		return "", err
	}

	log.Info("Shared design created successfully")
	return id, nil
}

// DesignStore implementation for user-owned designs
func (s *fsStore) userPath(userID string) string {
	return filepath.Join(s.basePath, "designs", userID)
}

// securePath joins and verifies that the result stays inside the user's
// directory, rejecting traversal through crafted ids.
func (s *fsStore) securePath(userID, id string) (string, error) {
	userPath, err := filepath.Abs(s.userPath(userID))
	if err != nil {
		return "", err
	}
	filePath, err := filepath.Abs(filepath.Join(userPath, id))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(filePath, userPath+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path: access denied")
	}
	return filePath, nil
}

func (s *fsStore) List(ctx context.Context, userID string) ([]*core.Design, error) {
	userPath := s.userPath(userID)
	log := logrus.WithField("user_id", userID).WithField("path", userPath)

	files, err := os.ReadDir(userPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("User directory does not exist, returning empty list.")
			return []*core.Design{}, nil
		}
		log.WithError(err).Error("Failed to read user directory")
		return nil, err
	}

	designs := make([]*core.Design, 0, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		filePath := filepath.Join(userPath, file.Name())
		fileInfo, err := file.Info()
		if err != nil {
			log.WithError(err).Warnf("Failed to get file info for %s, skipping", file.Name())
			continue
		}

		data, err := os.ReadFile(filePath)
		if err != nil {
			log.WithError(err).Warnf("Failed to read design file %s, skipping", file.Name())
			continue
		}

		var design core.Design
		if err := json.Unmarshal(data, &design); err != nil {
			log.WithError(err).Warnf("Failed to unmarshal design file %s, skipping", file.Name())
			continue
		}

		// For list view, we don't need the full archive blob.
		design.Data = nil
		design.UpdatedAt = fileInfo.ModTime()
		designs = append(designs, &design)
	}

	log.Infof("Listed %d designs", len(designs))
	return designs, nil
}

func (s *fsStore) Get(ctx context.Context, userID, id string) (*core.Design, error) {
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "design_id": id})

	filePath, err := s.securePath(userID, id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Design file not found")
			return nil, fmt.Errorf("design %s not found", id)
		}
		log.WithError(err).Error("Failed to read design file")
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		log.WithError(err).Error("Failed to get file stats")
		return nil, err
	}

	var design core.Design
	if err := json.Unmarshal(data, &design); err != nil {
		log.WithError(err).Error("Failed to unmarshal design data")
		return nil, err
	}
	design.UpdatedAt = info.ModTime()

	log.Info("Design retrieved successfully")
	return &design, nil
}

func (s *fsStore) Save(ctx context.Context, design *core.Design) error {
	userPath := s.userPath(design.UserID)
	log := logrus.WithFields(logrus.Fields{"user_id": design.UserID, "design_id": design.ID})

	if err := os.MkdirAll(userPath, 0755); err != nil {
		log.WithError(err).Error("Failed to create user directory")
		return err
	}

	filePath, err := s.securePath(design.UserID, design.ID)
	if err != nil {
		return err
	}

	// Set creation/update time before saving
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		design.CreatedAt = time.Now()
	} else if err == nil {
		design.CreatedAt = info.ModTime() // This is not ideal, but filesystem doesn't store creation time easily.
	}
	design.UpdatedAt = time.Now()

	log.Info("Saving design")
	data, err := json.Marshal(design)
	if err != nil {
		log.WithError(err).Error("Failed to marshal design for saving")
		return err
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.WithError(err).Error("Failed to write design file")
		return err
	}

	return nil
}

func (s *fsStore) Delete(ctx context.Context, userID, id string) error {
	log := logrus.WithFields(logrus.Fields{"user_id": userID, "design_id": id})

	filePath, err := s.securePath(userID, id)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			log.Warn("Design file not found for deletion, considered successful.")
			return nil // If it doesn't exist, the goal is achieved.
		}
		log.WithError(err).Error("Failed to delete design file")
		return err
	}

	log.Info("Design deleted successfully")
	return nil
}
