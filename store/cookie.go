package store

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

const minCookieSecretLen = 16

// CookieConfig controls how sealed credential cookies are written.
type CookieConfig struct {
	// Name is the access cookie name. The refresh cookie uses Name + "_rt".
	Name string

	// Secret seals cookie payloads. The AEAD key is derived with SHA-256,
	// so any secret of at least minCookieSecretLen bytes works.
	Secret []byte

	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite

	// RefreshTTL bounds the refresh cookie's Max-Age. Zero means a
	// session cookie.
	RefreshTTL time.Duration
}

func (c *CookieConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("cookie store: cookie name is required")
	}
	if len(c.Secret) < minCookieSecretLen {
		return fmt.Errorf("cookie store: secret must be at least %d bytes", minCookieSecretLen)
	}
	return nil
}

// CookieStore keeps the credential in two sealed http-only cookies on a
// single request/response pair. Construct one per request.
//
// Writes are cached in memory for the remainder of the request, so a Read
// after Save or Clear observes the mutation immediately even though the
// Set-Cookie header only takes effect on the next request.
type CookieStore struct {
	w    http.ResponseWriter
	r    *http.Request
	cfg  CookieConfig
	aead cipher.AEAD

	mu      sync.Mutex
	cached  *Credential
	pending bool
}

// accessEnvelope is the sealed access-cookie payload. The expiry travels
// inside the seal so Read can rebuild a full Credential without decoding
// the token itself.
type accessEnvelope struct {
	Token     string `json:"t"`
	ExpiresAt int64  `json:"e"`
}

// NewCookieStore binds a store to one request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request, cfg CookieConfig) (*CookieStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}
	key := sha256.Sum256(cfg.Secret)
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("cookie store: %v", err)
	}
	return &CookieStore{w: w, r: r, cfg: cfg, aead: aead}, nil
}

// Save seals both tokens and sets both cookies. The in-memory cache makes
// the new credential visible to Reads within the same request.
func (s *CookieStore) Save(ctx context.Context, cred *Credential) error {
	env, err := json.Marshal(accessEnvelope{Token: cred.AccessToken, ExpiresAt: cred.ExpiresAt.Unix()})
	if err != nil {
		return fmt.Errorf("cookie store: %v", err)
	}
	sealedAccess, err := s.seal(env)
	if err != nil {
		return err
	}
	sealedRefresh, err := s.seal([]byte(cred.RefreshToken))
	if err != nil {
		return err
	}

	accessAge := 0
	if !cred.ExpiresAt.IsZero() {
		if d := time.Until(cred.ExpiresAt); d > 0 {
			accessAge = int(d.Seconds()) + 1
		}
	}
	s.setCookie(s.cfg.Name, sealedAccess, accessAge)
	s.setCookie(s.cfg.Name+"_rt", sealedRefresh, int(s.cfg.RefreshTTL.Seconds()))

	s.mu.Lock()
	s.cached = cred.Clone()
	s.pending = true
	s.mu.Unlock()
	return nil
}

// Read returns the credential for this request. Once a Save or Clear has
// happened, the cached value wins over the inbound Cookie header.
func (s *CookieStore) Read(ctx context.Context) (*Credential, error) {
	s.mu.Lock()
	if s.pending {
		cred := s.cached.Clone()
		s.mu.Unlock()
		if cred == nil {
			return nil, ErrNoCredential
		}
		return cred, nil
	}
	s.mu.Unlock()

	cred := &Credential{}
	if c, err := s.r.Cookie(s.cfg.Name); err == nil {
		plain, err := s.open(c.Value)
		if err != nil {
			// Tampered or stale-key cookie. Treat as absent; the next
			// Save overwrites it.
			return nil, ErrNoCredential
		}
		var env accessEnvelope
		if err := json.Unmarshal(plain, &env); err != nil {
			return nil, ErrNoCredential
		}
		cred.AccessToken = env.Token
		if env.ExpiresAt > 0 {
			cred.ExpiresAt = time.Unix(env.ExpiresAt, 0)
		}
	}
	if c, err := s.r.Cookie(s.cfg.Name + "_rt"); err == nil {
		plain, err := s.open(c.Value)
		if err != nil {
			return nil, ErrNoCredential
		}
		cred.RefreshToken = string(plain)
	}
	if cred.AccessToken == "" && cred.RefreshToken == "" {
		return nil, ErrNoCredential
	}
	return cred, nil
}

// Clear expires both cookies and drops the cache. Safe to call repeatedly.
func (s *CookieStore) Clear(ctx context.Context) error {
	s.setCookie(s.cfg.Name, "", -1)
	s.setCookie(s.cfg.Name+"_rt", "", -1)

	s.mu.Lock()
	s.cached = nil
	s.pending = true
	s.mu.Unlock()
	return nil
}

func (s *CookieStore) setCookie(name, value string, maxAge int) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.cfg.Path,
		Domain:   s.cfg.Domain,
		MaxAge:   maxAge,
		Secure:   s.cfg.Secure,
		HttpOnly: true,
		SameSite: s.cfg.SameSite,
	})
}

func (s *CookieStore) seal(plain []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cookie store: %v", err)
	}
	out := s.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *CookieStore) open(value string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, err
	}
	if len(raw) < s.aead.NonceSize() {
		return nil, fmt.Errorf("cookie store: sealed value too short")
	}
	nonce, box := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	return s.aead.Open(nil, nonce, box, nil)
}
