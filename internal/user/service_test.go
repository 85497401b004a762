package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/users-api/internal/user"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) (uuid.UUID, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter user.Filter) ([]user.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestUserService_CreateUser_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	rawPassword := "secret1"
	testUser := &user.User{
		Name:      "Ana",
		Telephone: "611111111",
		Email:     "ana@x.com",
		Password:  rawPassword,
	}
	expectedID := uuid.Must(uuid.NewV4())

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		return u.Password == "" && u.PasswordHash != "" && u.PasswordHash != rawPassword
	})).
		Return(expectedID, nil).
		Once()

	createdUser, err := userService.CreateUser(context.Background(), testUser)

	require.NoError(t, err)
	require.NotNil(t, createdUser)
	require.Equal(t, expectedID, createdUser.ID)

	err = bcrypt.CompareHashAndPassword([]byte(createdUser.PasswordHash), []byte(rawPassword))
	require.NoError(t, err, "Password hash does not match raw password")

	cost, err := bcrypt.Cost([]byte(createdUser.PasswordHash))
	require.NoError(t, err)
	require.Equal(t, user.PasswordCost, cost)

	mockRepo.AssertExpectations(t)
}

func TestUserService_CreateUser_EmptyPassword(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	createdUser, err := userService.CreateUser(context.Background(), &user.User{Name: "Ana", Email: "ana@x.com"})
	require.ErrorIs(t, err, user.ErrEmptyPassword)
	require.Nil(t, createdUser)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_CreateUser_EmailExists(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	testUser := user.User{
		Name:     "Ana",
		Email:    "duplicate@example.com",
		Password: "somepassword",
	}

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(uuid.Nil, user.ErrEmailExists).
		Once()

	createdUser, err := userService.CreateUser(context.Background(), &testUser)
	require.ErrorIs(t, err, user.ErrEmailExists)
	require.Nil(t, createdUser)
	mockRepo.AssertExpectations(t)
}

func TestUserService_CreateUser_RepositoryFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)
	dbErr := errors.New("connection refused")

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Return(uuid.Nil, dbErr).
		Once()

	createdUser, err := userService.CreateUser(context.Background(), &user.User{Password: "x"})
	require.ErrorIs(t, err, dbErr)
	require.Nil(t, createdUser)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByID_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	userID := uuid.Must(uuid.NewV4())

	expectedUser := user.User{
		ID:           userID,
		Name:         "Ana",
		Telephone:    "611111111",
		Email:        "ana@x.com",
		PasswordHash: "hashed_password_from_repo",
		CreatedAt:    time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now(),
	}

	mockRepo.On("GetByID", mock.Anything, userID).
		Return(&expectedUser, nil).
		Once()

	foundUser, err := userService.GetUserByID(context.Background(), userID)

	require.NoError(t, err)
	require.NotNil(t, foundUser)
	diff := cmp.Diff(expectedUser, *foundUser)
	require.Empty(t, diff)
	mockRepo.AssertExpectations(t)
}

func TestUserService_GetUserByID_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	userID := uuid.Must(uuid.NewV4())

	mockRepo.On("GetByID", mock.Anything, userID).
		Return(nil, user.ErrNotFound).
		Once()

	foundUser, err := userService.GetUserByID(context.Background(), userID)
	require.ErrorIs(t, err, user.ErrNotFound)
	require.Nil(t, foundUser)
	mockRepo.AssertExpectations(t)
}

func TestUserService_ListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	expected := []user.User{
		{ID: uuid.Must(uuid.NewV4()), Name: "Ana"},
		{ID: uuid.Must(uuid.NewV4()), Name: "Bo"},
	}

	mockRepo.On("List", mock.Anything, user.Filter{Name: "an"}).
		Return(expected, nil).
		Once()

	users, err := userService.ListUsers(context.Background(), user.Filter{Name: "  an "})
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(expected, users))
	mockRepo.AssertExpectations(t)
}

func TestUserService_ListUsers_Failure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)
	dbErr := errors.New("boom")

	mockRepo.On("List", mock.Anything, user.Filter{}).
		Return(nil, dbErr).
		Once()

	users, err := userService.ListUsers(context.Background(), user.Filter{})
	require.ErrorIs(t, err, dbErr)
	require.Nil(t, users)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_Success_NoPasswordChange(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	userToUpdate := user.User{
		ID:        uuid.Must(uuid.NewV4()),
		Name:      "Ana B",
		Telephone: "611111111",
		Email:     "ana@x.com",
	}

	mockRepo.On("Update", mock.Anything, &userToUpdate).
		Return(nil).
		Once()

	updated, err := userService.UpdateUser(context.Background(), &userToUpdate)
	require.NoError(t, err)
	require.Equal(t, "Ana B", updated.Name)
	require.Empty(t, updated.PasswordHash)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_Success_WithPasswordChange(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	rawPassword := "newpassword123"
	userToUpdate := user.User{
		ID:        uuid.Must(uuid.NewV4()),
		Name:      "Ana",
		Telephone: "611111111",
		Email:     "ana@x.com",
		Password:  rawPassword,
	}

	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		return u.ID == userToUpdate.ID &&
			u.Password == "" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(rawPassword)) == nil
	})).
		Return(nil).
		Once()

	_, err := userService.UpdateUser(context.Background(), &userToUpdate)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_UpdateUser_Errors(t *testing.T) {
	dbErr := errors.New("boom")

	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{name: "not found", repoErr: user.ErrNotFound, wantErr: user.ErrNotFound},
		{name: "email exists", repoErr: user.ErrEmailExists, wantErr: user.ErrEmailExists},
		{name: "repository failure", repoErr: dbErr, wantErr: dbErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			userService := user.NewService(mockRepo)

			userToUpdate := user.User{ID: uuid.Must(uuid.NewV4()), Name: "Ana", Email: "ana@x.com"}

			mockRepo.On("Update", mock.Anything, &userToUpdate).
				Return(tt.repoErr).
				Once()

			updated, err := userService.UpdateUser(context.Background(), &userToUpdate)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, updated)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_DeleteUser_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	userID := uuid.Must(uuid.NewV4())

	mockRepo.On("Delete", mock.Anything, userID).
		Return(nil).
		Once()

	err := userService.DeleteUser(context.Background(), userID)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_DeleteUser_NotFound(t *testing.T) {
	mockRepo := new(MockUserRepository)
	userService := user.NewService(mockRepo)

	userID := uuid.Must(uuid.NewV4())

	mockRepo.On("Delete", mock.Anything, userID).
		Return(user.ErrNotFound).
		Once()

	err := userService.DeleteUser(context.Background(), userID)
	require.ErrorIs(t, err, user.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
