package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"

	"github.com/taskboard/client/internal/api"
	"github.com/taskboard/client/internal/model"
)

const serviceName = "taskboard"

// Durable storage keys. All three are written on login and cleared
// together on logout.
const (
	keyJWT      = "jwt"
	keyUsername = "username"
	keyRole     = "role"
)

// OpenKeyring returns a configured keyring instance backed by the system
// credential store, falling back to an encrypted file.
func OpenKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/taskboard/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("taskboard-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Manager owns the session lifecycle: authentication against the API,
// durable persistence across restarts, and teardown on logout.
type Manager struct {
	ring   keyring.Keyring
	client *api.Client

	mu      sync.Mutex
	current *model.Session
}

// NewManager creates a Manager over the given keyring and API client.
func NewManager(ring keyring.Keyring, client *api.Client) *Manager {
	return &Manager{ring: ring, client: client}
}

// Token returns the current bearer credential, or empty when logged out.
// Suitable as the API client's token source.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Current returns a copy of the active session, or nil when logged out.
func (m *Manager) Current() *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Login exchanges credentials for a token, derives the role from the
// token's embedded claim, persists jwt/username/role, and activates the
// session.
func (m *Manager) Login(ctx context.Context, username, password string) (*model.Session, error) {
	resp, err := m.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	sess := model.Session{
		Token:    resp.Token,
		Username: username,
		Role:     DecodeRole(resp.Token),
	}

	if err := m.persist(sess); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = &sess
	m.mu.Unlock()

	out := sess
	return &out, nil
}

// Register creates an account. It does not log the new account in; the
// caller follows up with Login.
func (m *Manager) Register(ctx context.Context, username, password, role string) error {
	return m.client.Register(ctx, username, password, role)
}

// Restore rebuilds the session from durable storage. When the cached role
// is missing it is reconstructed from the token's claim; a token whose
// claim fails to decode still restores, with an empty role. Returns nil
// when no credential is stored.
func (m *Manager) Restore() *model.Session {
	token, err := m.getKey(keyJWT)
	if err != nil || token == "" {
		return nil
	}

	username, _ := m.getKey(keyUsername)
	role, _ := m.getKey(keyRole)
	if role == "" {
		role = DecodeRole(token)
	}

	sess := model.Session{Token: token, Username: username, Role: role}

	m.mu.Lock()
	m.current = &sess
	m.mu.Unlock()

	out := sess
	return &out
}

// Logout clears the in-memory session and all three durable keys together.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	for _, key := range []string{keyJWT, keyUsername, keyRole} {
		// Removing an absent key is not a failure worth surfacing.
		_ = m.ring.Remove(key)
	}
}

// persist writes the session's durable keys.
func (m *Manager) persist(sess model.Session) error {
	items := map[string]string{
		keyJWT:      sess.Token,
		keyUsername: sess.Username,
		keyRole:     sess.Role,
	}
	for key, value := range items {
		err := m.ring.Set(keyring.Item{Key: key, Data: []byte(value)})
		if err != nil {
			return fmt.Errorf("persisting session key %q: %w", key, err)
		}
	}
	return nil
}

// getKey reads one durable key, returning empty on any failure.
func (m *Manager) getKey(key string) (string, error) {
	item, err := m.ring.Get(key)
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

// DecodeRole extracts the role claim from a bearer token without
// verifying the signature (the server remains the authority; the claim is
// only used for local display and routing). Returns empty when the token
// or claim cannot be decoded.
func DecodeRole(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}
