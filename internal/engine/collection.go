package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"gorm.io/gorm"
)

// CreateCollection creates a named bookmark collection for a user. Names
// are unique per owner.
func (e *Engine) CreateCollection(ctx context.Context, ownerID uint, name string) (*models.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is required", ErrValidation)
	}

	collection := models.Collection{
		Name:      name,
		UserID:    ownerID,
		CreatedAt: time.Now(),
	}
	if err := e.db.WithContext(ctx).Create(&collection).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, fmt.Errorf("%w: collection %q already exists for this user", ErrConflict, name)
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, ownerID)
		default:
			return nil, storageErr(err)
		}
	}
	return &collection, nil
}

// ListBookmarks returns the posts bookmarked into one collection, newest
// bookmark first. Only the collection's owner may list it.
func (e *Engine) ListBookmarks(ctx context.Context, callerID, collectionID uint) ([]EnrichedPost, error) {
	db := e.db.WithContext(ctx)

	var collection models.Collection
	if err := db.Select("id", "user_id").First(&collection, collectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: collection %d", ErrNotFound, collectionID)
		}
		return nil, storageErr(err)
	}
	if collection.UserID != callerID {
		return nil, fmt.Errorf("%w: collection %d does not belong to user %d", ErrValidation, collectionID, callerID)
	}

	return scanEnriched(db.Model(&models.Post{}).
		Select(enrichedSelect, callerID).
		Joins("JOIN users ON users.id = posts.user_id").
		Joins("JOIN bookmarks ON bookmarks.post_id = posts.id").
		Where("bookmarks.collection_id = ?", collectionID).
		Order("bookmarks.created_at DESC"))
}
