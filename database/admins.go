package database

import (
	"context"
	"fmt"
	"time"

	"github.com/VyacheslavBabenko/beejee/models"
)

// GetAdminByUsername looks up an administrator by its unique username.
func (s *Store) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var a models.Admin
	err := s.db.GetContext(ctx, &a, s.db.Rebind("SELECT id, username, password, created_at FROM admins WHERE username = ?"), username)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// CreateAdmin inserts an administrator with an already hashed password.
func (s *Store) CreateAdmin(ctx context.Context, username, passwordHash string) (int64, error) {
	id, err := s.insert(ctx, "INSERT INTO admins (username, password, created_at) VALUES (?, ?, ?)",
		username, passwordHash, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert admin: %w", err)
	}
	return id, nil
}
