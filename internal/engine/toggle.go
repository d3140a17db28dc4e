package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EdgeType int

const (
	EdgeLike EdgeType = iota
	EdgeFollow
	EdgeBookmark
)

func (t EdgeType) String() string {
	switch t {
	case EdgeLike:
		return "like"
	case EdgeFollow:
		return "follow"
	case EdgeBookmark:
		return "bookmark"
	}
	return "unknown"
}

type EdgeState string

const (
	EdgePresent EdgeState = "present"
	EdgeAbsent  EdgeState = "absent"
)

type ToggleResult struct {
	State  EdgeState             `json:"state"`
	Counts map[CounterKind]int64 `json:"counts"`
}

// toggleCall carries per-call state between the policy hooks.
type toggleCall struct {
	actorID      uint
	targetID     uint
	collectionID uint

	// filled in by validate: who gets the fan-out entry, if anyone
	recipientID uint
	kind        models.NotificationKind
}

// edgeOps is the per-edge-type policy. The toggle algorithm is defined once
// below; only validation, row shape and the affected counters differ.
// insert reports whether it actually created the edge: a lost race against
// a concurrent toggle inserts nothing but is not an error.
type edgeOps struct {
	validate func(tx *gorm.DB, c *toggleCall) error
	exists   func(tx *gorm.DB, c *toggleCall) (bool, error)
	insert   func(tx *gorm.DB, c *toggleCall) (bool, error)
	remove   func(tx *gorm.DB, c *toggleCall) error
	counters func(tx *gorm.DB, c *toggleCall) (map[CounterKind]int64, error)
}

// ToggleEdge inverts the presence of a like or follow edge and returns the
// resulting state plus the counters it affected, all within one
// transaction. Bookmarks carry a collection and go through ToggleBookmark.
func (e *Engine) ToggleEdge(ctx context.Context, edge EdgeType, actorID, targetID uint) (*ToggleResult, error) {
	if edge == EdgeBookmark {
		return nil, fmt.Errorf("%w: bookmark toggles require a collection", ErrValidation)
	}
	return e.toggle(ctx, edge, actorID, targetID, 0)
}

// ToggleBookmark inverts the (user, post, collection) bookmark edge. The
// collection must belong to the bookmarking user.
func (e *Engine) ToggleBookmark(ctx context.Context, actorID, postID, collectionID uint) (*ToggleResult, error) {
	if collectionID == 0 {
		return nil, fmt.Errorf("%w: collection id is required", ErrValidation)
	}
	return e.toggle(ctx, EdgeBookmark, actorID, postID, collectionID)
}

func (e *Engine) toggle(ctx context.Context, edge EdgeType, actorID, targetID, collectionID uint) (*ToggleResult, error) {
	// cheap structural checks before any storage work
	if actorID == 0 || targetID == 0 {
		return nil, fmt.Errorf("%w: actor and target ids are required", ErrValidation)
	}
	if edge == EdgeFollow && actorID == targetID {
		return nil, fmt.Errorf("%w: self-follow is not allowed", ErrValidation)
	}

	ops := e.ops(edge)
	call := &toggleCall{actorID: actorID, targetID: targetID, collectionID: collectionID}

	tx := e.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, storageErr(tx.Error)
	}

	if err := ops.validate(tx, call); err != nil {
		tx.Rollback()
		return nil, err
	}

	present, err := ops.exists(tx, call)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var state EdgeState
	fresh := false
	if present {
		if err := ops.remove(tx, call); err != nil {
			tx.Rollback()
			return nil, err
		}
		state = EdgeAbsent
	} else {
		// the insert races against concurrent toggles of the same pair;
		// the unique index resolves the race and a lost insert leaves the
		// state present without marking it fresh
		fresh, err = ops.insert(tx, call)
		if err != nil {
			tx.Rollback()
			return nil, storageErr(err)
		}
		state = EdgePresent
	}

	// fan-out happens only on fresh creation, never on removal, and never
	// to the actor themself (self-like is permitted but silent)
	var created *models.Notification
	if fresh && call.kind != "" && call.recipientID != call.actorID {
		n := models.Notification{
			RecipientID: call.recipientID,
			ActorID:     call.actorID,
			Kind:        call.kind,
			ReferenceID: call.targetID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&n).Error; err != nil {
			tx.Rollback()
			return nil, storageErr(err)
		}
		created = &n
	}

	// counters are read inside the same transaction so the caller sees a
	// value consistent with the edge just written
	counts, err := ops.counters(tx, call)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, storageErr(err)
	}

	// post-commit side effects are advisory only
	if e.publisher != nil {
		e.publisher.PublishEdgeToggled(edge.String(), actorID, targetID, state == EdgePresent)
		if created != nil {
			e.publisher.PublishNotification(*created)
		}
	}
	if e.cache != nil && edge == EdgeFollow {
		e.cache.InvalidateFeed(actorID)
	}

	return &ToggleResult{State: state, Counts: counts}, nil
}

func (e *Engine) ops(edge EdgeType) *edgeOps {
	switch edge {
	case EdgeLike:
		return &edgeOps{
			validate: func(tx *gorm.DB, c *toggleCall) error {
				if err := requireUser(tx, c.actorID); err != nil {
					return err
				}
				var post models.Post
				if err := tx.Select("id", "user_id").First(&post, c.targetID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: post %d", ErrNotFound, c.targetID)
					}
					return storageErr(err)
				}
				c.recipientID = post.UserID
				c.kind = models.NotificationPostLiked
				return nil
			},
			exists: func(tx *gorm.DB, c *toggleCall) (bool, error) {
				return edgeExists(tx.Model(&models.PostLike{}).
					Where("user_id = ? AND post_id = ?", c.actorID, c.targetID))
			},
			insert: func(tx *gorm.DB, c *toggleCall) (bool, error) {
				return insertEdge(tx, &models.PostLike{UserID: c.actorID, PostID: c.targetID, CreatedAt: time.Now()})
			},
			remove: func(tx *gorm.DB, c *toggleCall) error {
				return deleteErr(tx.Where("user_id = ? AND post_id = ?", c.actorID, c.targetID).
					Delete(&models.PostLike{}))
			},
			counters: func(tx *gorm.DB, c *toggleCall) (map[CounterKind]int64, error) {
				return collectCounts(tx, map[CounterKind]uint{
					CountPostLikes: c.targetID,
				})
			},
		}
	case EdgeFollow:
		return &edgeOps{
			validate: func(tx *gorm.DB, c *toggleCall) error {
				if err := requireUser(tx, c.actorID); err != nil {
					return err
				}
				if err := requireUser(tx, c.targetID); err != nil {
					return err
				}
				c.recipientID = c.targetID
				c.kind = models.NotificationNewFollower
				return nil
			},
			exists: func(tx *gorm.DB, c *toggleCall) (bool, error) {
				return edgeExists(tx.Model(&models.Follow{}).
					Where("follower_id = ? AND followed_id = ?", c.actorID, c.targetID))
			},
			insert: func(tx *gorm.DB, c *toggleCall) (bool, error) {
				return insertEdge(tx, &models.Follow{FollowerID: c.actorID, FollowedID: c.targetID, CreatedAt: time.Now()})
			},
			remove: func(tx *gorm.DB, c *toggleCall) error {
				return deleteErr(tx.Where("follower_id = ? AND followed_id = ?", c.actorID, c.targetID).
					Delete(&models.Follow{}))
			},
			counters: func(tx *gorm.DB, c *toggleCall) (map[CounterKind]int64, error) {
				return collectCounts(tx, map[CounterKind]uint{
					CountUserFollowers: c.targetID,
					CountUserFollowing: c.actorID,
				})
			},
		}
	default: // EdgeBookmark
		return &edgeOps{
			validate: func(tx *gorm.DB, c *toggleCall) error {
				if err := requireUser(tx, c.actorID); err != nil {
					return err
				}
				var post models.Post
				if err := tx.Select("id").First(&post, c.targetID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: post %d", ErrNotFound, c.targetID)
					}
					return storageErr(err)
				}
				var col models.Collection
				if err := tx.Select("id", "user_id").First(&col, c.collectionID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: collection %d", ErrNotFound, c.collectionID)
					}
					return storageErr(err)
				}
				if col.UserID != c.actorID {
					return fmt.Errorf("%w: collection %d does not belong to user %d", ErrValidation, c.collectionID, c.actorID)
				}
				// bookmarks never notify anyone
				return nil
			},
			exists: func(tx *gorm.DB, c *toggleCall) (bool, error) {
				return edgeExists(tx.Model(&models.Bookmark{}).
					Where("user_id = ? AND post_id = ? AND collection_id = ?", c.actorID, c.targetID, c.collectionID))
			},
			insert: func(tx *gorm.DB, c *toggleCall) (bool, error) {
				return insertEdge(tx, &models.Bookmark{
					UserID:       c.actorID,
					PostID:       c.targetID,
					CollectionID: c.collectionID,
					CreatedAt:    time.Now(),
				})
			},
			remove: func(tx *gorm.DB, c *toggleCall) error {
				return deleteErr(tx.Where("user_id = ? AND post_id = ? AND collection_id = ?", c.actorID, c.targetID, c.collectionID).
					Delete(&models.Bookmark{}))
			},
			counters: func(tx *gorm.DB, c *toggleCall) (map[CounterKind]int64, error) {
				return map[CounterKind]int64{}, nil
			},
		}
	}
}

// insertEdge writes an edge row, letting the unique index swallow a
// concurrent duplicate. Returns whether a row was actually created.
func insertEdge(tx *gorm.DB, row any) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func edgeExists(q *gorm.DB) (bool, error) {
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, storageErr(err)
	}
	return n > 0, nil
}

func deleteErr(res *gorm.DB) error {
	if res.Error != nil {
		return storageErr(res.Error)
	}
	return nil
}

func collectCounts(tx *gorm.DB, subjects map[CounterKind]uint) (map[CounterKind]int64, error) {
	counts := make(map[CounterKind]int64, len(subjects))
	for kind, id := range subjects {
		n, err := countOne(tx, kind, id)
		if err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, nil
}
