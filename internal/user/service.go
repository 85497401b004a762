package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for stored password hashes.
const PasswordCost = 10

type Service interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context, filter Filter) ([]User, error)
	UpdateUser(ctx context.Context, user *User) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateUser(ctx context.Context, user *User) (*User, error) {
	if user.Password == "" {
		return nil, ErrEmptyPassword
	}

	if err := s.hashPassword(user); err != nil {
		return nil, err
	}

	createdID, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Str("email", user.Email).Msg("failed to create user in repository")
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	user.ID = createdID
	log.Info().Stringer("user_id", user.ID).Msg("user created")

	return user, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		log.Error().Err(err).Stringer("user_id", id).Msg("failed to get user by id in repository")
		return nil, fmt.Errorf("failed to get user by id '%s': %w", id, err)
	}

	return user, nil
}

func (s *service) ListUsers(ctx context.Context, filter Filter) ([]User, error) {
	users, err := s.repo.List(ctx, filter.Normalize())
	if err != nil {
		log.Error().Err(err).Msg("failed to list users in repository")
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateUser replaces the profile fields of an existing user. A non-empty Password
// is hashed and stored; an empty one keeps the current hash.
func (s *service) UpdateUser(ctx context.Context, user *User) (*User, error) {
	if user.Password != "" {
		if err := s.hashPassword(user); err != nil {
			return nil, err
		}
	}

	err := s.repo.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, ErrEmailExists):
			return nil, ErrEmailExists
		}

		log.Error().Err(err).Stringer("user_id", user.ID).Msg("failed to update user")
		return nil, fmt.Errorf("failed to update user by id '%s': %w", user.ID.String(), err)
	}

	return user, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		log.Error().Err(err).Stringer("user_id", id).Msg("failed to delete user")
		return fmt.Errorf("failed to delete user by id '%s': %w", id, err)
	}

	log.Info().Stringer("user_id", id).Msg("user deleted")
	return nil
}

// hashPassword moves user.Password into user.PasswordHash.
func (s *service) hashPassword(user *User) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), PasswordCost)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate password hash")
		return fmt.Errorf("internal error hashing password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.Password = ""
	return nil
}
