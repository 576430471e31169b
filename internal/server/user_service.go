package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/amckenna/college-planner/internal/config"
	"github.com/amckenna/college-planner/internal/docstore"
	"github.com/amckenna/college-planner/internal/profile"
	"github.com/amckenna/college-planner/internal/types"
)

// UserService provides business logic for user accounts and authentication
// over the document store.
type UserService struct {
	store          docstore.Store
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies.
func NewUserService(store docstore.Store, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		store:          store,
		passwordConfig: passwordConfig,
	}
}

// userFromDoc builds the public user view from a stored document, excluding
// the password hash.
func userFromDoc(doc docstore.Document) *types.User {
	if doc == nil {
		return nil
	}
	str := func(key string) string {
		s, _ := doc[key].(string)
		return s
	}
	boolean := func(key string) bool {
		b, _ := doc[key].(bool)
		return b
	}
	return &types.User{
		UID:         str("uid"),
		DisplayName: str("displayName"),
		Email:       str("email"),
		IsOnboarded: boolean("isOnboarded"),
		PasswordSet: boolean("passwordSet"),
		CreatedAt:   str("createdAt"),
		LastLoginAt: str("lastLoginAt"),
	}
}

// CreateUser seeds a fresh user document. An empty uid gets a generated one.
// Timestamps are assigned by the store; the task list starts empty.
func (s *UserService) CreateUser(ctx context.Context, uid, displayName, email string) (*types.User, error) {
	if uid == "" {
		uid = uuid.NewString()
	}

	doc := docstore.Document{
		"uid":         uid,
		"displayName": displayName,
		"email":       email,
		"isOnboarded": false,
		"passwordSet": false,
		"createdAt":   docstore.ServerTimestamp,
		"lastLoginAt": docstore.ServerTimestamp,
		"tasks":       []any{},
		"totalTasks":  0,
	}
	if err := s.store.Set(ctx, profile.UsersCollection, uid, doc); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.GetUser(ctx, uid)
}

// GetUser returns the public view of a user.
func (s *UserService) GetUser(ctx context.Context, uid string) (*types.User, error) {
	doc, err := s.store.Get(ctx, profile.UsersCollection, uid)
	if err != nil {
		return nil, err
	}
	return userFromDoc(doc), nil
}

// getUserByEmail returns the full user document for an email, or nil when no
// user matches.
func (s *UserService) getUserByEmail(ctx context.Context, email string) (docstore.Document, error) {
	docs, err := s.store.Stream(ctx, profile.UsersCollection, docstore.Filter{Field: "email", Equals: email})
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

// Register creates a new user with password authentication.
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	existing, err := s.getUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.CreateUser(ctx, "", req.DisplayName, req.Email)
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, profile.UsersCollection, user.UID, docstore.Document{
		"passwordHash": passwordHash,
		"passwordSet":  true,
	}); err != nil {
		return nil, fmt.Errorf("failed to set password: %w", err)
	}
	user.PasswordSet = true

	return user, nil
}

// Login authenticates a user by email and password and stamps lastLoginAt.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	doc, err := s.getUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	// Security: the same generic error for unknown email and wrong password.
	if doc == nil {
		return nil, &ErrInvalidCredentials{}
	}

	passwordHash, _ := doc["passwordHash"].(string)
	if !s.passwordConfig.VerifyPassword(req.Password, passwordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	passwordSet, _ := doc["passwordSet"].(bool)
	if !passwordSet {
		return nil, &ErrInvalidCredentials{}
	}

	user := userFromDoc(doc)
	if err := s.store.Update(ctx, profile.UsersCollection, user.UID, docstore.Document{
		"lastLoginAt": docstore.ServerTimestamp,
	}); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return user, nil
}

// UpdatePassword updates a user's password after verifying the current one.
func (s *UserService) UpdatePassword(ctx context.Context, uid, currentPassword, newPassword string) error {
	doc, err := s.store.Get(ctx, profile.UsersCollection, uid)
	if err != nil {
		return err
	}

	passwordHash, _ := doc["passwordHash"].(string)
	if !s.passwordConfig.VerifyPassword(currentPassword, passwordHash) {
		return &ErrPasswordMismatch{}
	}

	newHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.store.Update(ctx, profile.UsersCollection, uid, docstore.Document{
		"passwordHash": newHash,
		"passwordSet":  true,
	}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
