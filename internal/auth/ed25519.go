package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/sorteio-admin/internal/config"
)

// Ed25519AuthProvider accepts requests whose Authorization header (or auth
// cookie) holds an Ed25519 signature of the current challenge.
type Ed25519AuthProvider struct {
	publicKey  ed25519.PublicKey
	headerName string
	cookieName string

	mu        sync.RWMutex
	challenge []byte
}

func NewEd25519AuthProvider(publicKeyPEM string, headerName string) (*Ed25519AuthProvider, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing the public key")
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	publicKey, ok := pub.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("key is not an Ed25519 public key")
	}

	p := &Ed25519AuthProvider{
		publicKey:  publicKey,
		headerName: headerName,
		cookieName: config.CookieAuthToken,
	}
	if err := p.RefreshChallenge(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Ed25519AuthProvider) GetChallenge() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]byte(nil), p.challenge...)
}

// RefreshChallenge invalidates every signature issued so far.
func (p *Ed25519AuthProvider) RefreshChallenge() error {
	challenge := make([]byte, 32)
	if _, err := rand.Read(challenge); err != nil {
		return fmt.Errorf("failed to generate challenge: %w", err)
	}

	p.mu.Lock()
	p.challenge = challenge
	p.mu.Unlock()
	return nil
}

func (p *Ed25519AuthProvider) Verify(signature []byte) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(signature) == ed25519.SignatureSize && ed25519.Verify(p.publicKey, p.challenge, signature)
}

func (p *Ed25519AuthProvider) signatureFromRequest(r *http.Request) []byte {
	l := zerolog.Ctx(r.Context())

	if h := strings.TrimSpace(r.Header.Get(p.headerName)); h != "" {
		sig, err := base64.StdEncoding.DecodeString(h)
		if err == nil {
			return sig
		}
		l.Debug().Err(err).Msg("Failed to decode signature from header")
	}

	if cookie, err := r.Cookie(p.cookieName); err == nil && cookie.Value != "" {
		sig, err := base64.StdEncoding.DecodeString(cookie.Value)
		if err == nil {
			return sig
		}
		l.Debug().Err(err).Msg("Failed to decode signature from cookie")
	}

	return nil
}

func (p *Ed25519AuthProvider) WithHeaderAuthorization() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sig := p.signatureFromRequest(r); sig != nil && p.Verify(sig) {
				r = r.WithContext(ContextWithAdmin(r.Context()))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (p *Ed25519AuthProvider) RequireAdmin(next http.Handler) http.Handler {
	return requireAdmin(next)
}
