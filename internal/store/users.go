package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
)

const userColumns = `id, email, password, full_name, role, phone, address, created_at`

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	q := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	if err := s.db.GetContext(ctx, &u, q, strings.ToLower(strings.TrimSpace(email))); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := s.db.GetContext(ctx, &u, s.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// CreateUser inserts u; Password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, err := s.GetUserByEmail(ctx, u.Email); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	u.CreatedAt = s.now()
	q := s.rebind(`INSERT INTO users (email, password, full_name, role, phone, address, created_at) VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := s.db.QueryRowxContext(ctx, q, u.Email, u.Password, u.FullName, u.Role, u.Phone, u.Address, u.CreatedAt).Scan(&u.ID); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Printf("user store: created id=%d email=%s role=%s", u.ID, u.Email, u.Role)
	return &u, nil
}
