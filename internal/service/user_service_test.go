package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userhub/internal/auth"
	apperrors "userhub/internal/errors"
	"userhub/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Save(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockTokenRepository is a mock implementation of repository.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Append(ctx context.Context, userID uuid.UUID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Exists(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	args := m.Called(ctx, userID, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) Remove(ctx context.Context, userID uuid.UUID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockTokenRepository) RemoveAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokenRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Token, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Token), args.Error(1)
}

func newTestUserService(users *MockUserRepository, tokens *MockTokenRepository) UserService {
	// nil cache client is a no-op by design
	return NewUserService(users, tokens, nil, auth.NewPasswordHasher(), NewUserValidator())
}

func intPtr(v int) *int {
	return &v
}

func TestUserService_Create(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateUserInput
		setupMock func(*MockUserRepository)
		checkErr  func(*testing.T, error)
		checkUser func(*testing.T, *model.User)
	}{
		{
			name:  "successful creation with explicit age",
			input: CreateUserInput{Name: "  Ann  ", Email: "Ann@X.com ", Password: "secretpass", Age: intPtr(30)},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ann@x.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			checkUser: func(t *testing.T, u *model.User) {
				assert.Equal(t, "Ann", u.Name)
				assert.Equal(t, "ann@x.com", u.Email)
				assert.Equal(t, 30, u.Age)
				assert.NotEmpty(t, u.PasswordHash)
				assert.NotEqual(t, "secretpass", u.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secretpass")))
			},
		},
		{
			name:  "age defaults to 5 when unspecified",
			input: CreateUserInput{Name: "Bob", Email: "bob@x.com", Password: "secretpass"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "bob@x.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			checkUser: func(t *testing.T, u *model.User) {
				assert.Equal(t, model.DefaultAge, u.Age)
			},
		},
		{
			name:      "password too short",
			input:     CreateUserInput{Name: "Ann", Email: "ann@x.com", Password: "short"},
			setupMock: func(m *MockUserRepository) {},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidation(err))
			},
		},
		{
			name:      "password contains the word password",
			input:     CreateUserInput{Name: "Ann", Email: "ann@x.com", Password: "MyPassWord123"},
			setupMock: func(m *MockUserRepository) {},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidation(err))
			},
		},
		{
			name:      "invalid email syntax",
			input:     CreateUserInput{Name: "Ann", Email: "not-an-email", Password: "secretpass"},
			setupMock: func(m *MockUserRepository) {},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidation(err))
			},
		},
		{
			name:      "age below one",
			input:     CreateUserInput{Name: "Ann", Email: "ann@x.com", Password: "secretpass", Age: intPtr(0)},
			setupMock: func(m *MockUserRepository) {},
			checkErr: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidation(err))
			},
		},
		{
			name:  "duplicate email",
			input: CreateUserInput{Name: "Ann", Email: "ann@x.com", Password: "secretpass"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ann@x.com").Return(&model.User{Email: "ann@x.com"}, nil)
			},
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newTestUserService(mockRepo, new(MockTokenRepository))
			user, err := svc.Create(context.Background(), tt.input)

			if tt.checkErr != nil {
				assert.Error(t, err)
				tt.checkErr(t, err)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				if tt.checkUser != nil {
					tt.checkUser(t, user)
				}
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Update_RejectsForeignFieldWithoutPersisting(t *testing.T) {
	// No expectations at all: the whitelist check must reject the request
	// before the store is touched.
	mockRepo := new(MockUserRepository)
	svc := newTestUserService(mockRepo, new(MockTokenRepository))

	user, err := svc.Update(context.Background(), uuid.New(), map[string]any{
		"name": "X",
		"role": "admin",
	})

	assert.Nil(t, user)
	assert.True(t, apperrors.IsValidation(err))
	mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUserService_Update_AppliesAllowedFields(t *testing.T) {
	userID := uuid.New()
	stored := &model.User{ID: userID, Name: "Ann", Email: "ann@x.com", Age: 30, PasswordHash: "oldhash"}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, userID).Return(stored, nil)
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := newTestUserService(mockRepo, new(MockTokenRepository))
	updated, err := svc.Update(context.Background(), userID, map[string]any{
		"name": "  Anna ",
		"age":  float64(31), // JSON numbers arrive as float64
	})

	assert.NoError(t, err)
	assert.Equal(t, "Anna", updated.Name)
	assert.Equal(t, 31, updated.Age)
	assert.Equal(t, "oldhash", updated.PasswordHash, "password untouched when not in patch")
	mockRepo.AssertExpectations(t)
}

func TestUserService_Update_RehashesChangedPassword(t *testing.T) {
	userID := uuid.New()
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("oldsecretpw"), bcrypt.MinCost)
	stored := &model.User{ID: userID, Name: "Ann", Email: "ann@x.com", PasswordHash: string(oldHash)}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, userID).Return(stored, nil)
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := newTestUserService(mockRepo, new(MockTokenRepository))
	updated, err := svc.Update(context.Background(), userID, map[string]any{
		"password": "newsecretpw",
	})

	assert.NoError(t, err)
	assert.NotEqual(t, string(oldHash), updated.PasswordHash)
	assert.NotEqual(t, "newsecretpw", updated.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newsecretpw")))
	mockRepo.AssertExpectations(t)
}

func TestUserService_Update_InvalidValueLeavesRecordAlone(t *testing.T) {
	userID := uuid.New()
	stored := &model.User{ID: userID, Name: "Ann", Email: "ann@x.com", Age: 30}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, userID).Return(stored, nil)

	svc := newTestUserService(mockRepo, new(MockTokenRepository))
	updated, err := svc.Update(context.Background(), userID, map[string]any{
		"age": float64(0),
	})

	assert.Nil(t, updated)
	assert.True(t, apperrors.IsValidation(err))
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUserService_GetByName(t *testing.T) {
	stored := &model.User{ID: uuid.New(), Name: "Ann", Email: "ann@x.com"}

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByName", mock.Anything, "Ann").Return(stored, nil)
	mockRepo.On("FindByName", mock.Anything, "Nobody").Return(nil, gorm.ErrRecordNotFound)

	svc := newTestUserService(mockRepo, new(MockTokenRepository))

	user, err := svc.GetByName(context.Background(), "Ann")
	assert.NoError(t, err)
	assert.Equal(t, stored.ID, user.ID)

	user, err = svc.GetByName(context.Background(), "Nobody")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_Delete_RemovesTokens(t *testing.T) {
	userID := uuid.New()
	stored := &model.User{ID: userID, Name: "Ann", Email: "ann@x.com"}

	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenRepository)
	mockRepo.On("FindByID", mock.Anything, userID).Return(stored, nil)
	mockTokens.On("RemoveAll", mock.Anything, userID).Return(nil)
	mockRepo.On("Delete", mock.Anything, stored).Return(nil)

	svc := newTestUserService(mockRepo, mockTokens)
	deleted, err := svc.Delete(context.Background(), userID)

	assert.NoError(t, err)
	assert.Equal(t, userID, deleted.ID)
	mockRepo.AssertExpectations(t)
	mockTokens.AssertExpectations(t)
}
