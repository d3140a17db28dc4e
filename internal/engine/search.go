package engine

import (
	"context"
	"strings"
	"time"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"
)

// searchLimit caps each of the three result lists independently.
const searchLimit = 20

type UserMatch struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type TagMatch struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"post_count"`
}

type SearchResults struct {
	Posts []EnrichedPost `json:"posts"`
	Users []UserMatch    `json:"users"`
	Tags  []TagMatch     `json:"tags"`
}

// Search resolves a query term against posts, users and tags, each with its
// own ordering rule. The three queries are independent; if any one fails the
// whole call fails, since callers cannot tell "empty" from "failed".
func (e *Engine) Search(ctx context.Context, query string) (*SearchResults, error) {
	results := &SearchResults{
		Posts: []EnrichedPost{},
		Users: []UserMatch{},
		Tags:  []TagMatch{},
	}

	q := strings.TrimSpace(query)
	if q == "" {
		// blank queries short-circuit before touching storage
		return results, nil
	}

	db := e.db.WithContext(ctx)
	pattern := "%" + q + "%"

	posts, err := scanEnriched(db.Model(&models.Post{}).
		Select(enrichedSelect, uint(0)).
		Joins("JOIN users ON users.id = posts.user_id").
		Where("posts.title ILIKE ? OR posts.content ILIKE ?", pattern, pattern).
		Order("posts.created_at DESC").
		Limit(searchLimit))
	if err != nil {
		return nil, err
	}
	results.Posts = posts

	// prefix matches rank above mere substring matches, ties break on
	// recency
	err = db.Raw(`SELECT id, username, created_at FROM users
		WHERE username ILIKE ?
		ORDER BY (username ILIKE ?) DESC, created_at DESC
		LIMIT ?`, pattern, q+"%", searchLimit).
		Scan(&results.Users).Error
	if err != nil {
		return nil, storageErr(err)
	}

	err = db.Raw(`SELECT c.id, c.name, COUNT(pc.post_id) AS post_count
		FROM categories c
		LEFT JOIN post_categories pc ON pc.category_id = c.id
		WHERE c.name ILIKE ?
		GROUP BY c.id, c.name
		ORDER BY post_count DESC, c.name ASC
		LIMIT ?`, pattern, searchLimit).
		Scan(&results.Tags).Error
	if err != nil {
		return nil, storageErr(err)
	}

	return results, nil
}
