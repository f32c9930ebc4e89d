package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"designpad/core"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	// Table for anonymously shared archives
	shareTableStmt := `CREATE TABLE IF NOT EXISTS shares (id TEXT PRIMARY KEY, data BLOB);`
	if _, err = db.Exec(shareTableStmt); err != nil {
		log.Fatalf("failed to create shares table: %v", err)
	}

	// Table for user-owned designs
	designTableStmt := `
	CREATE TABLE IF NOT EXISTS designs (
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		name TEXT,
		thumbnail TEXT,
		data BLOB,
		created_at DATETIME,
		updated_at DATETIME,
		PRIMARY KEY (user_id, id)
	);`
	if _, err = db.Exec(designTableStmt); err != nil {
		log.Fatalf("failed to create designs table: %v", err)
	}

	return &sqliteStore{db}
}

// ShareStore implementation
func (s *sqliteStore) FindID(ctx context.Context, id string) (*core.SharedDesign, error) {
	log := logrus.WithField("share_id", id)
	log.Debug("Retrieving shared design by ID")
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM shares WHERE id = ?", id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			log.WithField("error", "share not found").Warn("Shared design with specified ID not found")
			return nil, fmt.Errorf("shared design with id %s not found", id)
		}
		log.WithError(err).Error("Failed to retrieve shared design")
		return nil, err
	}
	log.Info("Shared design retrieved successfully")
	return &core.SharedDesign{Data: data}, nil
}

func (s *sqliteStore) Create(ctx context.Context, shared *core.SharedDesign) (string, error) {
	id := ulid.Make().String()
	log := logrus.WithFields(logrus.Fields{
		"share_id":    id,
		"data_length": len(shared.Data),
	})

	_, err := s.db.ExecContext(ctx, "INSERT INTO shares (id, data) VALUES (?, ?)", id, shared.Data)
	if err != nil {
		log.WithError(err).Error("Failed to create shared design")
		return "", err
	}
	log.Info("Shared design created successfully")
	return id, nil
}

// DesignStore implementation
func (s *sqliteStore) List(ctx context.Context, userID string) ([]*core.Design, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, updated_at, thumbnail FROM designs WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var designs []*core.Design
	for rows.Next() {
		var design core.Design
		design.UserID = userID
		if err := rows.Scan(&design.ID, &design.Name, &design.UpdatedAt, &design.Thumbnail); err != nil {
			return nil, err
		}
		designs = append(designs, &design)
	}
	return designs, rows.Err()
}

func (s *sqliteStore) Get(ctx context.Context, userID, id string) (*core.Design, error) {
	var design core.Design
	design.UserID = userID
	design.ID = id
	err := s.db.QueryRowContext(ctx, "SELECT name, data, created_at, updated_at, thumbnail FROM designs WHERE user_id = ? AND id = ?", userID, id).Scan(&design.Name, &design.Data, &design.CreatedAt, &design.UpdatedAt, &design.Thumbnail)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("design not found")
		}
		return nil, err
	}
	return &design, nil
}

func (s *sqliteStore) Save(ctx context.Context, design *core.Design) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Rollback on any error

	var exists bool
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM designs WHERE user_id = ? AND id = ?", design.UserID, design.ID).Scan(&exists)

	now := time.Now()
	if err != nil && err != sql.ErrNoRows {
		return err
	}

	if exists {
		// Update
		_, err = tx.ExecContext(ctx, "UPDATE designs SET name = ?, data = ?, updated_at = ?, thumbnail = ? WHERE user_id = ? AND id = ?", design.Name, design.Data, now, design.Thumbnail, design.UserID, design.ID)
	} else {
		// Insert
		_, err = tx.ExecContext(ctx, "INSERT INTO designs (id, user_id, name, data, created_at, updated_at, thumbnail) VALUES (?, ?, ?, ?, ?, ?, ?)", design.ID, design.UserID, design.Name, design.Data, now, now, design.Thumbnail)
	}

	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *sqliteStore) Delete(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM designs WHERE user_id = ? AND id = ?", userID, id)
	return err
}
