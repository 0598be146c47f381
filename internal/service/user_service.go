package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"userhub/internal/auth"
	"userhub/internal/cache"
	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// allowedUpdateFields is the whitelist of attributes a partial update may
// touch. A single foreign key rejects the whole request before anything is
// written.
var allowedUpdateFields = map[string]struct{}{
	"name":     {},
	"age":      {},
	"email":    {},
	"password": {},
}

// CreateUserInput carries signup fields. A nil Age means unspecified and
// takes the default.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
}

// UserService exposes account lifecycle operations.
type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByName(ctx context.Context, name string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userService struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	cache     *cache.Client
	hasher    *auth.PasswordHasher
	validator *UserValidator
}

// NewUserService builds a UserService with its repositories and cache.
func NewUserService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	cacheClient *cache.Client,
	hasher *auth.PasswordHasher,
	validator *UserValidator,
) UserService {
	return &userService{
		users:     users,
		tokens:    tokens,
		cache:     cacheClient,
		hasher:    hasher,
		validator: validator,
	}
}

func (s *userService) idCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:id:%s", id)
}

func (s *userService) nameCacheKey(name string) string {
	return fmt.Sprintf("user:name:%s", name)
}

// Create validates and persists a new user. The plaintext password is hashed
// exactly once and never stored.
func (s *userService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	name, err := s.validator.NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := s.validator.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password, err := s.validator.ValidatePassword(in.Password)
	if err != nil {
		return nil, err
	}

	age := model.DefaultAge
	if in.Age != nil {
		age = *in.Age
	}
	if err := s.validator.ValidateAge(age); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Age:          age,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.nameCacheKey(user.Name))
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.idCacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupErr(err)
	}

	s.cacheUser(ctx, s.idCacheKey(id), user)
	return user, nil
}

// GetByName resolves a name to the oldest matching user. Names are not
// unique; first-match semantics are part of the contract.
func (s *userService) GetByName(ctx context.Context, name string) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.nameCacheKey(name)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		return nil, translateLookupErr(err)
	}

	s.cacheUser(ctx, s.nameCacheKey(name), user)
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Update applies a partial update atomically: every key is checked against
// the whitelist before the record is loaded, the full resulting record is
// re-validated, and the password is re-hashed only when the patch carries one.
func (s *userService) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*model.User, error) {
	for field := range updates {
		if _, ok := allowedUpdateFields[field]; !ok {
			return nil, apperrors.NewValidationError(field, "is not an updatable field")
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupErr(err)
	}
	oldName := user.Name

	if raw, ok := updates["name"]; ok {
		value, ok := raw.(string)
		if !ok {
			return nil, apperrors.NewValidationError("name", "must be a string")
		}
		name, err := s.validator.NormalizeName(value)
		if err != nil {
			return nil, err
		}
		user.Name = name
	}

	if raw, ok := updates["email"]; ok {
		value, ok := raw.(string)
		if !ok {
			return nil, apperrors.NewValidationError("email", "must be a string")
		}
		email, err := s.validator.NormalizeEmail(value)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if other, err := s.users.FindByEmail(ctx, email); err == nil && other != nil && other.ID != user.ID {
				return nil, apperrors.ErrEmailTaken
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("check email uniqueness: %w", err)
			}
		}
		user.Email = email
	}

	if raw, ok := updates["age"]; ok {
		age, err := intFromJSON(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("age", "must be an integer")
		}
		if err := s.validator.ValidateAge(age); err != nil {
			return nil, err
		}
		user.Age = age
	}

	if raw, ok := updates["password"]; ok {
		value, ok := raw.(string)
		if !ok {
			return nil, apperrors.NewValidationError("password", "must be a string")
		}
		password, err := s.validator.ValidatePassword(value)
		if err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.invalidate(ctx, user.ID, oldName, user.Name)
	return user, nil
}

// Delete removes the user and every active token, returning the deleted view.
func (s *userService) Delete(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupErr(err)
	}

	if err := s.tokens.RemoveAll(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("remove tokens: %w", err)
	}
	if err := s.users.Delete(ctx, user); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	s.invalidate(ctx, user.ID, user.Name, user.Name)
	return user, nil
}

func (s *userService) cacheUser(ctx context.Context, key string, user *model.User) {
	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, key, payload, userCacheTTL)
	}
}

func (s *userService) invalidate(ctx context.Context, id uuid.UUID, names ...string) {
	_ = s.cache.Delete(ctx, s.idCacheKey(id))
	for _, name := range names {
		_ = s.cache.Delete(ctx, s.nameCacheKey(name))
	}
}

func translateLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrUserNotFound
	}
	return err
}

// intFromJSON accepts the numeric shapes a bound JSON body can produce.
func intFromJSON(raw any) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, errors.New("not an integer")
		}
		return int(v), nil
	case int:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	default:
		return 0, errors.New("not a number")
	}
}
