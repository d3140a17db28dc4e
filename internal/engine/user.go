package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/auth"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"gorm.io/gorm"
)

// CreateUser registers a user with a bcrypt-hashed password. Username and
// email are unique; a duplicate registers as a conflict, not a crash.
func (e *Engine) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, storageErr(err)
	}

	user := models.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		CreatedAt:      time.Now(),
	}
	if err := e.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: username or email already registered", ErrConflict)
		}
		return nil, storageErr(err)
	}
	return &user, nil
}

// GetUser fetches a user by id.
func (e *Engine) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := e.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, storageErr(err)
	}
	return &user, nil
}

// GetUserByEmail fetches a user by email, for the login path.
func (e *Engine) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := e.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no user with email %q", ErrNotFound, email)
		}
		return nil, storageErr(err)
	}
	return &user, nil
}
