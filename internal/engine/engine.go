// Package engine implements the social-interaction core: atomic edge
// toggles (like/follow/bookmark), live counter projection, notification
// fan-out, the follow-graph feed and search. All mutating operations run
// inside a single database transaction and either fully apply or fully
// roll back.
package engine

import (
	"fmt"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/cache"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/messaging"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"gorm.io/gorm"
)

type Engine struct {
	db        *gorm.DB
	cache     *cache.Cache
	publisher *messaging.Publisher
}

// New builds the engine around an already-connected database handle.
// Cache and publisher are optional; a nil value disables feed caching and
// event publishing respectively.
func New(db *gorm.DB, c *cache.Cache, p *messaging.Publisher) *Engine {
	return &Engine{db: db, cache: c, publisher: p}
}

func requireUser(tx *gorm.DB, id uint) error {
	var n int64
	if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}
