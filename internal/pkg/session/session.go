package session

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	redisstore "github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/cache"
)

// Session keys.
const (
	KeyUserID   = "user_id"
	KeyUserName = "user_name"
)

// Config selects the redis server sessions live on.
type Config struct {
	Host     string
	Port     int
	Password string
	Secure   bool
}

// Store wraps the fiber session store with the login helpers.
type Store struct {
	*session.Store
}

// New stores sessions in the redis sessions database.
func New(cfg Config) *Store {
	storage := redisstore.New(redisstore.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		Database: cache.DBSessions,
		Reset:    false,
	})
	return NewWithStorage(storage, cfg.Secure)
}

// NewWithStorage builds a store on any fiber storage; nil keeps sessions in memory.
func NewWithStorage(storage fiber.Storage, secure bool) *Store {
	return &Store{session.New(session.Config{
		Storage:        storage,
		CookieHTTPOnly: true,
		CookieSecure:   secure,
		CookieSameSite: "Lax",
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:session_id",
	})}
}

// Login rotates the session id and binds it to userID.
func (s *Store) Login(c *fiber.Ctx, userID uint, name string) error {
	sess, err := s.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Set(KeyUserID, userID)
	sess.Set(KeyUserName, name)
	return sess.Save()
}

// Logout destroys the session.
func (s *Store) Logout(c *fiber.Ctx) error {
	sess, err := s.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	return sess.Destroy()
}

// UserID returns the logged-in user id, or 0.
func (s *Store) UserID(c *fiber.Ctx) uint {
	sess, err := s.Get(c)
	if err != nil {
		return 0
	}
	id, _ := sess.Get(KeyUserID).(uint)
	return id
}

// SetValue stores a string in the user's session.
func (s *Store) SetValue(c *fiber.Ctx, key, value string) error {
	sess, err := s.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	sess.Set(key, value)
	return sess.Save()
}

// Value reads a string from the user's session.
func (s *Store) Value(c *fiber.Ctx, key string) string {
	sess, err := s.Get(c)
	if err != nil {
		return ""
	}
	v, _ := sess.Get(key).(string)
	return v
}
