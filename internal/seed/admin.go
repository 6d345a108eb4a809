package seed

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/auth"
)

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (*domain.User, error)
}

// EnsureAdmin creates the bootstrap admin account when it does not exist.
// Without a configured password a random one is generated and logged once.
func EnsureAdmin(ctx context.Context, st UserStore, email, password string, logger *log.Logger) error {
	if _, err := st.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	generated := false
	if password == "" {
		password = uuid.NewString()
		generated = true
	}
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u, err := st.CreateUser(ctx, domain.User{Email: email, Password: hashed, FullName: "Administrator", Role: domain.RoleAdmin})
	if err != nil {
		return err
	}
	if generated {
		logger.Printf("seed: created admin %s with generated password %s", u.Email, password)
	} else {
		logger.Printf("seed: created admin %s", u.Email)
	}
	return nil
}
