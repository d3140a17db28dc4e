package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/LilRag/Echo-Dbms-Miniproject/internal/auth"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/cache"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/database"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/engine"
	"github.com/LilRag/Echo-Dbms-Miniproject/internal/messaging"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Database connected and migrated successfully")

	// Cache and messaging are optional; the engine degrades gracefully
	c, err := cache.Connect()
	if err != nil {
		log.Printf("Warning: Redis unavailable, feed caching disabled: %v", err)
		c = nil
	}
	pub, err := messaging.Connect()
	if err != nil {
		log.Printf("Warning: NATS unavailable, event publishing disabled: %v", err)
		pub = nil
	}

	eng := engine.New(db, c, pub)
	srv := &server{engine: eng}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", srv.health)
	mux.HandleFunc("POST /users", srv.createUser)
	mux.HandleFunc("POST /login", srv.login)
	mux.HandleFunc("POST /posts", srv.requireAuth(srv.createPost))
	mux.HandleFunc("GET /posts", srv.listPosts)
	mux.HandleFunc("GET /posts/{id}", srv.getPost)
	mux.HandleFunc("DELETE /posts/{id}", srv.requireAuth(srv.deletePost))
	mux.HandleFunc("POST /posts/{id}/like", srv.requireAuth(srv.toggleLike))
	mux.HandleFunc("GET /posts/{id}/comments", srv.listComments)
	mux.HandleFunc("POST /posts/{id}/comments", srv.requireAuth(srv.createComment))
	mux.HandleFunc("POST /users/{id}/follow", srv.requireAuth(srv.toggleFollow))
	mux.HandleFunc("GET /feed", srv.requireAuth(srv.getFeed))
	mux.HandleFunc("GET /search", srv.search)
	mux.HandleFunc("GET /notifications", srv.requireAuth(srv.listNotifications))
	mux.HandleFunc("POST /notifications/read", srv.requireAuth(srv.markAllRead))
	mux.HandleFunc("POST /collections", srv.requireAuth(srv.createCollection))
	mux.HandleFunc("GET /collections/{id}", srv.requireAuth(srv.listBookmarks))
	mux.HandleFunc("POST /bookmarks", srv.requireAuth(srv.toggleBookmark))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

type server struct {
	engine *engine.Engine
}

type authedHandler func(w http.ResponseWriter, r *http.Request, userID uint)

// requireAuth resolves the caller identity from the Bearer token. The engine
// itself never authenticates; it only ever sees the resolved user id.
func (s *server) requireAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, claims.UserID)
	}
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "echo-backend",
	})
}

func (s *server) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	user, err := s.engine.CreateUser(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	user, err := s.engine.GetUserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.HashedPassword, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (s *server) createPost(w http.ResponseWriter, r *http.Request, userID uint) {
	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if !decode(w, r, &req) {
		return
	}
	post, err := s.engine.CreatePost(r.Context(), userID, req.Title, req.Content, req.Tags)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *server) listPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	posts, err := s.engine.ListPosts(r.Context(), viewerFromHeader(r), limit, offset)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "total": len(posts)})
}

func (s *server) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	post, err := s.engine.GetPost(r.Context(), id, viewerFromHeader(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *server) deletePost(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.engine.DeletePost(r.Context(), id, userID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) toggleLike(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := s.engine.ToggleEdge(r.Context(), engine.EdgeLike, userID, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) toggleFollow(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := s.engine.ToggleEdge(r.Context(), engine.EdgeFollow, userID, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) createComment(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	comment, err := s.engine.CreateComment(r.Context(), userID, id, req.ParentID, req.Content)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *server) listComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	comments, err := s.engine.ListComments(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

func (s *server) getFeed(w http.ResponseWriter, r *http.Request, userID uint) {
	limit, offset := pagination(r)
	feed, err := s.engine.GetFeed(r.Context(), userID, limit, offset)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": feed})
}

func (s *server) search(w http.ResponseWriter, r *http.Request) {
	results, err := s.engine.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *server) listNotifications(w http.ResponseWriter, r *http.Request, userID uint) {
	limit, _ := pagination(r)
	notifications, err := s.engine.ListRecent(r.Context(), userID, limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	unread, err := s.engine.UnreadCount(r.Context(), userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications, "unread": unread})
}

func (s *server) markAllRead(w http.ResponseWriter, r *http.Request, userID uint) {
	if err := s.engine.MarkAllRead(r.Context(), userID); err != nil {
		writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) createCollection(w http.ResponseWriter, r *http.Request, userID uint) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	collection, err := s.engine.CreateCollection(r.Context(), userID, req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, collection)
}

func (s *server) listBookmarks(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	posts, err := s.engine.ListBookmarks(r.Context(), userID, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (s *server) toggleBookmark(w http.ResponseWriter, r *http.Request, userID uint) {
	var req struct {
		PostID       uint `json:"post_id"`
		CollectionID uint `json:"collection_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	result, err := s.engine.ToggleBookmark(r.Context(), userID, req.PostID, req.CollectionID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// viewerFromHeader resolves an optional identity on read endpoints, so
// anonymous reads still work but logged-in viewers get their own like
// state back.
func viewerFromHeader(r *http.Request) uint {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return 0
	}
	claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return 0
	}
	return claims.UserID
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
