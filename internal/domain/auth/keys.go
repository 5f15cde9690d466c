package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeySource fetches the realm's token verification key.
type KeySource interface {
	FetchKey(ctx context.Context) (*rsa.PublicKey, error)
}

// RealmKeySource reads the public key published at a Keycloak realm URL.
type RealmKeySource struct {
	realmURL   string
	httpClient *http.Client
}

// NewRealmKeySource creates a key source for realmURL, e.g.
// https://portal.dsek.se/auth/realms/dsek/.
func NewRealmKeySource(realmURL string, httpClient *http.Client) *RealmKeySource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RealmKeySource{realmURL: realmURL, httpClient: httpClient}
}

type realmInfo struct {
	Realm     string `json:"realm"`
	PublicKey string `json:"public_key"`
}

// FetchKey implements KeySource.
func (s *RealmKeySource) FetchKey(ctx context.Context) (*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.realmURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch realm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch realm: status %d", resp.StatusCode)
	}

	var info realmInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode realm: %w", err)
	}
	if strings.TrimSpace(info.PublicKey) == "" {
		return nil, fmt.Errorf("realm %q has no public_key", info.Realm)
	}

	return ParsePublicKey(info.PublicKey)
}

// ParsePublicKey parses the bare base64 key body Keycloak publishes.
func ParsePublicKey(key string) (*rsa.PublicKey, error) {
	pem := "-----BEGIN PUBLIC KEY-----\n" + strings.TrimSpace(key) + "\n-----END PUBLIC KEY-----"
	pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return pub, nil
}

// keyCache keeps the last fetched key for ttl. Whoever finds it stale
// refetches; concurrent refreshes are allowed and the last one wins.
type keyCache struct {
	source KeySource
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	key       *rsa.PublicKey
	fetchedAt time.Time
}

func newKeyCache(source KeySource, ttl time.Duration) *keyCache {
	return &keyCache{source: source, ttl: ttl, now: time.Now}
}

func (c *keyCache) get(ctx context.Context) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, fetchedAt := c.key, c.fetchedAt
	c.mu.RUnlock()

	if key != nil && c.now().Sub(fetchedAt) < c.ttl {
		return key, nil
	}

	fresh, err := c.source.FetchKey(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.key = fresh
	c.fetchedAt = c.now()
	c.mu.Unlock()
	return fresh, nil
}
