package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// OAuth constants.
const (
	// codeTTL is how long a one-time authorisation code stays redeemable.
	codeTTL = 10 * time.Minute

	// grantAuthorizationCode and grantRefreshToken are the supported
	// grant types on POST /auth/token.
	grantAuthorizationCode = "authorization_code"
	grantRefreshToken      = "refresh_token"

	// Token type claims distinguishing access from refresh tokens.
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// tokenResponse is the response body for POST /auth/token.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// codeStore holds pending one-time authorisation codes.
// Codes are single-use and expire after codeTTL.
type codeStore struct {
	mu    sync.Mutex
	codes map[string]time.Time // code -> expiry
}

func newCodeStore() *codeStore {
	return &codeStore{codes: make(map[string]time.Time)}
}

// issue mints a new one-time code.
func (c *codeStore) issue() string {
	code := uuid.NewString()
	c.mu.Lock()
	c.codes[code] = time.Now().Add(codeTTL)
	c.mu.Unlock()
	return code
}

// consume redeems a code, removing it. Returns false for unknown or
// expired codes.
func (c *codeStore) consume(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiry, ok := c.codes[code]
	if !ok {
		return false
	}
	delete(c.codes, code)
	return time.Now().Before(expiry)
}

// clean removes expired codes.
func (c *codeStore) clean() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for code, expiry := range c.codes {
		if now.After(expiry) {
			delete(c.codes, code)
		}
	}
}

// cleanLoop runs clean periodically until the context is cancelled.
func (c *codeStore) cleanLoop(ctx context.Context) {
	ticker := time.NewTicker(codeTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.clean()
		}
	}
}

// handleAuthorize implements the authorisation leg of the voice platform
// OAuth link: GET /auth/auth?client_id=..&redirect_uri=..&state=..
//
// The deployment model is a single household account, so there is no user
// login step: a valid client_id is immediately granted a one-time code
// and redirected back to the platform.
func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	redirectURI := r.URL.Query().Get("redirect_uri")
	state := r.URL.Query().Get("state")

	if subtle.ConstantTimeCompare([]byte(clientID), []byte(s.authCfg.ClientID)) != 1 {
		writeBadRequest(w, "unknown client_id")
		return
	}
	if redirectURI == "" {
		writeBadRequest(w, "redirect_uri is required")
		return
	}

	code := s.codes.issue()
	target := fmt.Sprintf("%s?code=%s&state=%s",
		redirectURI, url.QueryEscape(code), url.QueryEscape(state))

	s.logger.Info("authorisation code issued", "client_id", clientID)
	http.Redirect(w, r, target, http.StatusFound)
}

// handleToken implements the token leg: POST /auth/token with form fields
// grant_type, client_id, client_secret, and code or refresh_token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "invalid form body")
		return
	}

	clientID := r.PostFormValue("client_id")
	clientSecret := r.PostFormValue("client_secret")
	if subtle.ConstantTimeCompare([]byte(clientID), []byte(s.authCfg.ClientID)) != 1 ||
		subtle.ConstantTimeCompare([]byte(clientSecret), []byte(s.authCfg.ClientSecret)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
		return
	}

	switch r.PostFormValue("grant_type") {
	case grantAuthorizationCode:
		if !s.codes.consume(r.PostFormValue("code")) {
			writeError(w, http.StatusBadRequest, "invalid_grant", "unknown or expired code")
			return
		}
		s.writeTokenPair(w, clientID, true)

	case grantRefreshToken:
		claims, err := s.parseToken(r.PostFormValue("refresh_token"))
		if err != nil || claims["typ"] != tokenTypeRefresh {
			writeError(w, http.StatusBadRequest, "invalid_grant", "invalid refresh token")
			return
		}
		s.writeTokenPair(w, clientID, false)

	default:
		writeError(w, http.StatusBadRequest, "unsupported_grant_type", "grant_type must be authorization_code or refresh_token")
	}
}

// writeTokenPair issues a signed access token, plus a refresh token when
// withRefresh is set (on the initial code exchange).
func (s *Server) writeTokenPair(w http.ResponseWriter, clientID string, withRefresh bool) {
	accessTTL := time.Duration(s.authCfg.AccessTokenTTL) * time.Minute

	access, err := s.signToken(clientID, tokenTypeAccess, accessTTL)
	if err != nil {
		writeInternalError(w, "failed to sign access token")
		return
	}

	resp := tokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int(accessTTL.Seconds()),
	}
	if withRefresh {
		refresh, err := s.signToken(clientID, tokenTypeRefresh,
			time.Duration(s.authCfg.RefreshTokenTTL)*time.Minute)
		if err != nil {
			writeInternalError(w, "failed to sign refresh token")
			return
		}
		resp.RefreshToken = refresh
	}

	writeJSON(w, http.StatusOK, resp)
}

// signToken mints an HS256 JWT with the configured secret.
func (s *Server) signToken(subject, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"typ": typ,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.authCfg.JWTSecret))
}

// parseToken validates a JWT's signature and expiry and returns its claims.
func (s *Server) parseToken(raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.authCfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return claims, nil
}
