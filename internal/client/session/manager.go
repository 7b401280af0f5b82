// Package session decides whether the locally stored credentials still form a
// usable session. It never returns storage errors to callers: failures are
// logged and the session is treated as absent.
package session

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/questify/domain"
)

const (
	TokenLifetime     = 7 * 24 * time.Hour
	InactivityTimeout = 24 * time.Hour
	RefreshThreshold  = time.Hour
)

// Storage keys.
const (
	KeyUserID       = "userId"
	KeyUserEmail    = "userEmail"
	KeyAuthToken    = "authToken"
	KeyTokenExpiry  = "tokenExpiry"
	KeyLastActivity = "lastActivity"
	KeyRememberMe   = "rememberMe"
	KeyCurrentUser  = "currentUser"
)

var allKeys = []string{
	KeyUserID,
	KeyUserEmail,
	KeyAuthToken,
	KeyTokenExpiry,
	KeyLastActivity,
	KeyRememberMe,
	KeyCurrentUser,
}

// Info is a read-only view of the stored session.
type Info struct {
	UserID       string     `json:"user_id,omitempty"`
	UserEmail    string     `json:"user_email,omitempty"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
	RememberMe   bool       `json:"remember_me"`
	IsValid      bool       `json:"is_valid"`
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager owns one session in one Storage. A nil storage means storage is
// unavailable: every operation is inert and no session is ever valid.
type Manager struct {
	mu      sync.Mutex
	storage Storage
	now     func() time.Time
	logger  *zap.Logger
}

func NewManager(storage Storage, opts ...Option) *Manager {
	m := &Manager{
		storage: storage,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SaveSession stores the credentials and starts the activity window.
func (m *Manager) SaveSession(user *domain.User, token string, rememberMe bool) {
	if m.storage == nil || user == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	snapshot, err := json.Marshal(user)
	if err != nil {
		m.logger.Warn("encode session user", zap.Error(err))
		snapshot = nil
	}

	m.set(KeyUserID, user.ID)
	m.set(KeyUserEmail, user.Email)
	m.set(KeyAuthToken, token)
	m.set(KeyRememberMe, strconv.FormatBool(rememberMe))
	m.set(KeyTokenExpiry, now.Add(TokenLifetime).Format(time.RFC3339Nano))
	m.set(KeyLastActivity, now.Format(time.RFC3339Nano))
	if snapshot != nil {
		m.set(KeyCurrentUser, string(snapshot))
	}
}

// HasValidSession reports whether a token is stored, the inactivity window
// (waived by remember-me) has not lapsed and the token has not expired.
// A valid check slides the activity window; an expired or timed-out session
// is cleared.
func (m *Manager) HasValidSession() bool {
	if m.storage == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkLocked()
}

func (m *Manager) checkLocked() bool {
	token, _ := m.get(KeyAuthToken)
	userID, _ := m.get(KeyUserID)
	if token == "" || userID == "" {
		return false
	}

	now := m.now()
	if !m.rememberMe() {
		last, ok := m.getTime(KeyLastActivity)
		if !ok || now.Sub(last) > InactivityTimeout {
			m.logger.Info("session timed out after inactivity")
			m.clearLocked()
			return false
		}
	}

	if raw, present := m.get(KeyTokenExpiry); present {
		expiry, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil || now.After(expiry) {
			m.logger.Info("session token expired")
			m.clearLocked()
			return false
		}
	}

	m.set(KeyLastActivity, now.Format(time.RFC3339Nano))
	return true
}

// ClearSession removes every session key. Safe to call repeatedly.
func (m *Manager) ClearSession() {
	if m.storage == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked()
}

func (m *Manager) clearLocked() {
	for _, key := range allKeys {
		if err := m.storage.Remove(key); err != nil {
			m.logger.Warn("remove session key", zap.String("key", key), zap.Error(err))
		}
	}
}

// UpdateActivity moves the last-activity mark to now.
func (m *Manager) UpdateActivity() {
	if m.storage == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(KeyLastActivity, m.now().Format(time.RFC3339Nano))
}

// SessionInfo returns the stored fields plus a fresh validity check.
func (m *Manager) SessionInfo() Info {
	if m.storage == nil {
		return Info{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	info := Info{}
	info.UserID, _ = m.get(KeyUserID)
	info.UserEmail, _ = m.get(KeyUserEmail)
	if t, ok := m.getTime(KeyTokenExpiry); ok {
		info.TokenExpiry = &t
	}
	if t, ok := m.getTime(KeyLastActivity); ok {
		info.LastActivity = &t
	}
	info.RememberMe = m.rememberMe()
	info.IsValid = m.checkLocked()
	return info
}

// CurrentUser returns the stored user snapshot, or nil.
func (m *Manager) CurrentUser() *domain.User {
	if m.storage == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.get(KeyCurrentUser)
	if !ok || raw == "" {
		return nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.logger.Warn("decode session user", zap.Error(err))
		return nil
	}
	return &user
}

// Token returns the stored bearer token, or "".
func (m *Manager) Token() string {
	if m.storage == nil {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	token, _ := m.get(KeyAuthToken)
	return token
}

// ShouldRefreshToken reports whether the token expires within RefreshThreshold.
func (m *Manager) ShouldRefreshToken() bool {
	if m.storage == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.getTime(KeyTokenExpiry)
	if !ok {
		return false
	}
	return expiry.Sub(m.now()) < RefreshThreshold
}

func (m *Manager) rememberMe() bool {
	raw, _ := m.get(KeyRememberMe)
	return raw == "true"
}

func (m *Manager) get(key string) (string, bool) {
	v, ok, err := m.storage.Get(key)
	if err != nil {
		m.logger.Warn("read session key", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, ok
}

func (m *Manager) getTime(key string) (time.Time, bool) {
	raw, ok := m.get(key)
	if !ok || raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (m *Manager) set(key, value string) {
	if err := m.storage.Set(key, value); err != nil {
		m.logger.Warn("write session key", zap.String("key", key), zap.Error(err))
	}
}
