package database

import (
	"fmt"
	"os"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres connection, migrates the schema and returns the
// handle. The caller owns the lifecycle; nothing here is stored globally.
func Connect() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	// TranslateError maps driver errors to gorm sentinels, so a lost race on
	// a unique edge index surfaces as gorm.ErrDuplicatedKey.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto migrate tables
	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Category{},
		&models.Follow{},
		&models.PostLike{},
		&models.PostView{},
		&models.Collection{},
		&models.Bookmark{},
		&models.Notification{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Create indexes for performance optimization
	db.Exec("CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_recipient_read ON notifications(recipient_id, read)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_post_views_post_id ON post_views(post_id)")

	return db, nil
}
