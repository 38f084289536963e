package identity

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/repos"
)

// localClient verifies credentials against the application's own user table.
// It is the backend of record when no hosted identity provider is configured,
// and doubles as the deterministic backend in development.
type localClient struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewLocalClient(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) Client {
	return &localClient{
		db:       db,
		log:      log.With("service", "LocalIdentityClient"),
		userRepo: userRepo,
	}
}

func (c *localClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	users, err := c.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, fmt.Errorf("%w: load user: %v", ErrInfrastructure, err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, fmt.Errorf("%w: unknown email", ErrInvalidCredentials)
	}

	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: password mismatch", ErrInvalidCredentials)
	}

	return &Session{
		UserID: user.ID.String(),
		Email:  user.Email,
	}, nil
}
