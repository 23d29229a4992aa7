// Package oauth implements the OAuth 2.1 surface guarding the MCP
// endpoint: discovery metadata, the authorization-code grant with PKCE,
// and bearer-token validation.
package oauth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	codeTTL       = 5 * time.Minute
	sweepInterval = time.Minute
)

// Config identifies the single registered client and the issuer URL this
// server advertises.
type Config struct {
	ClientID     string
	ClientSecret string
	// PublicURL is the externally reachable base URL, no trailing slash.
	PublicURL string
	// StaticToken is an always-valid bearer token for pre-OAuth clients.
	// Empty disables it.
	StaticToken string
}

type pendingCode struct {
	clientID        string
	redirectURI     string
	codeChallenge   string
	challengeMethod string
	expiresAt       time.Time
}

// Provider holds issued codes and tokens in memory. Tokens do not survive
// a restart; clients are expected to re-authorize.
type Provider struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	codes  map[string]pendingCode
	tokens map[string]struct{}

	now func() time.Time
}

// NewProvider creates a provider for the given client configuration.
func NewProvider(cfg Config, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		cfg:    cfg,
		logger: logger,
		codes:  make(map[string]pendingCode),
		tokens: make(map[string]struct{}),
		now:    time.Now,
	}
}

// StartSweeper evicts expired authorization codes every minute until ctx
// is done.
func (p *Provider) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.sweep()
			}
		}
	}()
}

func (p *Provider) sweep() {
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	for code, pending := range p.codes {
		if pending.expiresAt.Before(now) {
			delete(p.codes, code)
		}
	}
}

// Authorized reports whether the request carries a valid bearer token:
// either the static token or one issued by the token endpoint.
func (p *Provider) Authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return false
	}
	if p.cfg.StaticToken != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(p.cfg.StaticToken)) == 1 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, issued := p.tokens[token]
	return issued
}

// issueCode stores a pending authorization and returns the code.
func (p *Provider) issueCode(clientID, redirectURI, challenge, method string) string {
	code := randomHex()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes[code] = pendingCode{
		clientID:        clientID,
		redirectURI:     redirectURI,
		codeChallenge:   challenge,
		challengeMethod: method,
		expiresAt:       p.now().Add(codeTTL),
	}
	return code
}

// lookupCode returns the pending authorization for code without consuming
// it, so a failed token request does not burn the code. Expired codes are
// dropped on sight.
func (p *Provider) lookupCode(code string) (pendingCode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pending, ok := p.codes[code]
	if !ok {
		return pendingCode{}, false
	}
	if pending.expiresAt.Before(p.now()) {
		delete(p.codes, code)
		return pendingCode{}, false
	}
	return pending, true
}

// deleteCode consumes a code after a successful exchange.
func (p *Provider) deleteCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.codes, code)
}

// issueToken mints and records a new bearer token.
func (p *Provider) issueToken() string {
	token := randomHex()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[token] = struct{}{}
	return token
}

// verifyPKCE checks the verifier against the stored challenge. A pending
// authorization without a challenge passes (PKCE was not requested).
func verifyPKCE(pending pendingCode, verifier string) bool {
	if pending.codeChallenge == "" {
		return true
	}
	if pending.challengeMethod == "S256" {
		digest := sha256.Sum256([]byte(verifier))
		computed := base64.RawURLEncoding.EncodeToString(digest[:])
		return subtle.ConstantTimeCompare([]byte(computed), []byte(pending.codeChallenge)) == 1
	}
	return subtle.ConstantTimeCompare([]byte(verifier), []byte(pending.codeChallenge)) == 1
}

// randomHex returns 32 random bytes hex-encoded (64 characters).
func randomHex() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the process cannot mint credentials.
		panic("oauth: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
