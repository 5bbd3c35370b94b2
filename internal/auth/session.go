package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketSessions = []byte("sessions")

// Session is the persisted login for one backend.
type Session struct {
	APIURL    string    `json:"api_url"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore persists sessions keyed by backend URL in a bbolt file.
type SessionStore struct {
	db     *bolt.DB
	logger *slog.Logger

	mu      sync.Mutex
	syncErr error
}

// StoreOption configures a SessionStore.
type StoreOption func(*SessionStore)

// WithLogger sets the logger that reports failed session writes.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *SessionStore) { s.logger = l }
}

// OpenSessionStore opens (or creates) the session database at path.
func OpenSessionStore(path string, opts ...StoreOption) (*SessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating session dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketSessions)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &SessionStore{db: db, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close closes the database.
func (s *SessionStore) Close() error { return s.db.Close() }

// Save stores sess, replacing any previous session for the same backend.
func (s *SessionStore) Save(sess Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(sess.APIURL), data)
	})
}

// Load returns the session for apiURL. ok is false when none is stored.
func (s *SessionStore) Load(apiURL string) (sess Session, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSessions).Get([]byte(apiURL))
		if v == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(v, &sess)
	})
	return sess, ok, err
}

// Delete removes the session for apiURL.
func (s *SessionStore) Delete(apiURL string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(apiURL))
	})
}

// Bind seeds ctx from the stored session for apiURL and keeps the store in
// sync with later Set/Clear calls on ctx.
func (s *SessionStore) Bind(ctx *Context, apiURL string) error {
	sess, ok, err := s.Load(apiURL)
	if err != nil {
		return err
	}
	if ok && sess.Token != "" {
		ctx.Set(sess.Username, sess.Token)
	}
	ctx.OnChange(func(token string) {
		if token == "" {
			s.synced("delete", apiURL, s.Delete(apiURL))
			return
		}
		s.synced("save", apiURL, s.Save(Session{APIURL: apiURL, Username: ctx.Username(), Token: token}))
	})
	return nil
}

func (s *SessionStore) synced(op, apiURL string, err error) {
	if err != nil {
		err = fmt.Errorf("%s session for %s: %w", op, apiURL, err)
		s.logger.Error("session not persisted", "op", op, "api_url", apiURL, "error", err)
	}
	s.mu.Lock()
	s.syncErr = err
	s.mu.Unlock()
}

// SyncErr returns the error of the last write made on behalf of a bound
// Context, or nil if it succeeded.
func (s *SessionStore) SyncErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncErr
}
