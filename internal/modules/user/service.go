// README: User service: account CRUD with bcrypt-hashed passwords.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"carwash/internal/clock"
	"carwash/internal/types"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrBadRequest = errors.New("bad request")
	ErrDuplicate  = errors.New("username already exists")
)

const MinPasswordLength = 6

type Repository interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id types.ID) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id types.ID) error
}

type Service struct {
	store Repository
	clock clock.Clock
	cost  int
	log   logrus.FieldLogger
}

func NewService(store Repository, clk clock.Clock, log logrus.FieldLogger) *Service {
	return &Service{store: store, clock: clk, cost: bcrypt.DefaultCost, log: log.WithField("module", "user")}
}

// WithHashCost overrides the bcrypt cost.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

type CreateCommand struct {
	Username string
	FullName string
	Role     string
	Shift    string
	Password string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (User, error) {
	u := User{ID: types.NewID(), CreatedAt: s.clock.Now()}
	if err := applyProfile(&u, cmd.Username, cmd.FullName, cmd.Role, cmd.Shift); err != nil {
		return User{}, err
	}
	if err := s.setPassword(&u, cmd.Password); err != nil {
		return User{}, err
	}
	if err := s.store.Create(ctx, &u); err != nil {
		return User{}, err
	}
	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user created")
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id types.ID) (User, error) {
	u, err := s.store.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	return *u, nil
}

// UpdateCommand replaces the profile. An empty Password, or the current
// one, keeps the stored hash.
type UpdateCommand struct {
	ID       types.ID
	Username string
	FullName string
	Role     string
	Shift    string
	Password string
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (User, error) {
	u, err := s.store.Get(ctx, cmd.ID)
	if err != nil {
		return User{}, err
	}
	if err := applyProfile(u, cmd.Username, cmd.FullName, cmd.Role, cmd.Shift); err != nil {
		return User{}, err
	}
	if cmd.Password != "" && !passwordMatches(u.PasswordHash, cmd.Password) {
		if err := s.setPassword(u, cmd.Password); err != nil {
			return User{}, err
		}
	}
	if err := s.store.Update(ctx, u); err != nil {
		return User{}, err
	}
	s.log.WithField("user_id", u.ID).Info("user updated")
	return *u, nil
}

func (s *Service) Delete(ctx context.Context, id types.ID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.WithField("user_id", id).Info("user deleted")
	return nil
}

// passwordMatches reports whether password matches a stored bcrypt hash.
func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *Service) setPassword(u *User, password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrBadRequest, MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

func applyProfile(u *User, username, fullName, role, shift string) error {
	u.Username = strings.TrimSpace(username)
	u.FullName = strings.TrimSpace(fullName)
	if u.Username == "" || u.FullName == "" {
		return fmt.Errorf("%w: username and full_name are required", ErrBadRequest)
	}
	r, ok := ParseRole(role)
	if !ok {
		return fmt.Errorf("%w: unknown role %q", ErrBadRequest, role)
	}
	u.Role = r
	u.Shift = ""
	if r == RoleIncharge {
		sh, err := types.ParseShift(shift)
		if err != nil {
			return fmt.Errorf("%w: in-charge accounts need a shift", ErrBadRequest)
		}
		u.Shift = sh
	}
	return nil
}
