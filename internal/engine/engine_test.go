package engine_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/database"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/engine"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/models"

	"github.com/stretchr/testify/require"
)

// testEngine connects to the database configured in the environment.
// Tests are skipped when no database is available, matching how the rest
// of the integration suite behaves in CI.
func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	if os.Getenv("DB_HOST") == "" {
		t.Skip("Skipping test - no database connection configured")
	}
	db, err := database.Connect()
	require.NoError(t, err)
	return engine.New(db, nil, nil)
}

var userSeq int

// createTestUser registers a unique throwaway user.
func createTestUser(t *testing.T, e *engine.Engine) *models.User {
	t.Helper()
	userSeq++
	tag := fmt.Sprintf("%d_%d", time.Now().UnixNano(), userSeq)
	user, err := e.CreateUser(context.Background(), "u"+tag, "u"+tag+"@test.local", "password123")
	require.NoError(t, err)
	return user
}

func createTestPost(t *testing.T, e *engine.Engine, authorID uint, tags ...string) *models.Post {
	t.Helper()
	post, err := e.CreatePost(context.Background(), authorID, "test post", "test content", tags)
	require.NoError(t, err)
	return post
}
