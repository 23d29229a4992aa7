package oauth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
)

// Routes mounts the discovery and grant endpoints on mux.
func (p *Provider) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/.well-known/oauth-protected-resource", p.handleProtectedResource)
	mux.HandleFunc("/.well-known/oauth-authorization-server", p.handleAuthorizationServer)
	mux.HandleFunc("/authorize", p.handleAuthorize)
	mux.HandleFunc("/token", p.handleToken)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func oauthError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" {
		body["error_description"] = description
	}
	writeJSON(w, status, body)
}

func (p *Provider) handleProtectedResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"resource":                 p.cfg.PublicURL + "/mcp",
		"authorization_servers":    []string{p.cfg.PublicURL},
		"bearer_methods_supported": []string{"header"},
	})
}

func (p *Provider) handleAuthorizationServer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                p.cfg.PublicURL,
		"authorization_endpoint":                p.cfg.PublicURL + "/authorize",
		"token_endpoint":                        p.cfg.PublicURL + "/token",
		"response_types_supported":              []string{"code"},
		"grant_types_supported":                 []string{"authorization_code"},
		"code_challenge_methods_supported":      []string{"S256", "plain"},
		"token_endpoint_auth_methods_supported": []string{"client_secret_post"},
	})
}

func (p *Provider) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()

	if q.Get("response_type") != "code" {
		oauthError(w, http.StatusBadRequest, "unsupported_response_type", "")
		return
	}
	clientID := q.Get("client_id")
	if clientID != p.cfg.ClientID {
		oauthError(w, http.StatusForbidden, "invalid_client", "")
		return
	}

	redirectURI := q.Get("redirect_uri")
	target, err := url.Parse(redirectURI)
	if err != nil || redirectURI == "" {
		oauthError(w, http.StatusBadRequest, "invalid_request", "invalid redirect_uri")
		return
	}

	method := q.Get("code_challenge_method")
	if method == "" {
		method = "plain"
	}
	code := p.issueCode(clientID, redirectURI, q.Get("code_challenge"), method)

	// Preserve any query params the client put on its redirect URI.
	params := target.Query()
	params.Set("code", code)
	if state := q.Get("state"); state != "" {
		params.Set("state", state)
	}
	target.RawQuery = params.Encode()

	p.logger.Info("authorization code issued", slog.String("client_id", clientID))
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (p *Provider) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		oauthError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	if r.PostForm.Get("grant_type") != "authorization_code" {
		oauthError(w, http.StatusBadRequest, "unsupported_grant_type", "")
		return
	}

	code := r.PostForm.Get("code")
	pending, ok := p.lookupCode(code)
	if !ok {
		oauthError(w, http.StatusBadRequest, "invalid_grant", "")
		return
	}

	if r.PostForm.Get("client_id") != p.cfg.ClientID ||
		r.PostForm.Get("client_secret") != p.cfg.ClientSecret {
		oauthError(w, http.StatusUnauthorized, "invalid_client", "")
		return
	}

	if r.PostForm.Get("redirect_uri") != pending.redirectURI {
		oauthError(w, http.StatusBadRequest, "invalid_grant", "redirect_uri mismatch")
		return
	}

	if !verifyPKCE(pending, r.PostForm.Get("code_verifier")) {
		oauthError(w, http.StatusBadRequest, "invalid_grant", "PKCE verification failed")
		return
	}

	p.deleteCode(code)

	token := p.issueToken()
	p.logger.Info("access token issued", slog.String("client_id", pending.clientID))
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "Bearer",
	})
}
