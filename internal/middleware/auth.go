package middleware

import (
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Auth hydrates the user context from the session's backend access token.
// The token is issued and signature-verified by the backend; here its claims
// are only decoded to surface identity and drop expired tokens early.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		if s.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
			s.SignOut()
			next.ServeHTTP(w, r)
			return
		}
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
			s.SignOut()
			next.ServeHTTP(w, r)
			return
		}
		u := &User{ID: s.UserID, Email: s.Email, Name: s.Name}
		if u.ID == "" {
			if sub, err := claims.GetSubject(); err == nil {
				u.ID = sub
			}
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireAuth redirects anonymous requests to the login page, preserving the
// destination in ?next= so login can bounce back.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			if IsHTMX(r.Context()) {
				w.Header().Set("HX-Redirect", "/login")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
