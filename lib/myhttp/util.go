package myhttp

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/MarcGrol/coinshop/lib/myerrors"
)

// HostnameWithScheme prefers the configured public url over the one derived from the request.
func HostnameWithScheme(baseURL string, r *http.Request) string {
	if baseURL != "" {
		return strings.TrimSuffix(baseURL, "/")
	}

	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

func IsJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

func DecodeJSON(r *http.Request, dest any) error {
	err := json.NewDecoder(r.Body).Decode(dest)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error parsing json body: %s", err))
	}
	return nil
}

// RequireBasicAuth protects the admin endpoints with the configured credentials.
func RequireBasicAuth(username, password string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || username == "" || password == "" ||
			subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(pass), []byte(password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(ErrorResponse{ErrorCode: 1, Error: "not authorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Credentials guard the admin endpoints.
type Credentials struct {
	Username string
	Password string
}

func (cr Credentials) Protect(next http.Handler) http.Handler {
	return RequireBasicAuth(cr.Username, cr.Password, next)
}
