package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const sessionCookieName = "LI_SESSION"

// SessionData is the signed-cookie session. It carries the backend access
// token plus the lightweight checkout progress that must survive page loads:
// once an order is finalized, retries after a cancelled popup reuse it
// instead of creating a second order.
type SessionData struct {
	ID        string           `json:"id"`
	Token     string           `json:"tok,omitempty"`
	UserID    string           `json:"uid,omitempty"`
	Email     string           `json:"email,omitempty"`
	Name      string           `json:"name,omitempty"`
	Checkout  CheckoutProgress `json:"checkout,omitempty"`
	Flashes   []Flash          `json:"flashes,omitempty"`
	CSRFToken string           `json:"csrf,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool `json:"-"`
}

// CheckoutProgress is the order-of-record for an in-flight checkout.
// AttemptKey is minted when the form is rendered and sent as the finalize
// idempotency key, so duplicate submissions of the same form collapse into
// one order at the backend. It is spent once an order number is recorded.
type CheckoutProgress struct {
	OrderNumber string `json:"order,omitempty"`
	Reference   string `json:"ref,omitempty"`
	AttemptKey  string `json:"key,omitempty"`
}

// Flash is a one-shot message rendered on the next page load.
type Flash struct {
	Tone    string `json:"tone"`
	Message string `json:"msg"`
}

var (
	sessionSignKey []byte
	sessionSecure  bool
)

// ConfigureSessions sets the cookie signing key and secure flag. An empty key
// gets a process-ephemeral replacement, which breaks sessions on restart and
// is only acceptable in development.
func ConfigureSessions(signingKey string, secure bool, logger *zap.Logger) {
	sessionSecure = secure
	if signingKey != "" {
		sessionSignKey = []byte(signingKey)
		return
	}
	sessionSignKey = make([]byte, 32)
	if _, err := rand.Read(sessionSignKey); err != nil && logger != nil {
		logger.Error("session signing key generation failed", zap.Error(err))
	}
	if logger != nil {
		logger.Warn("using ephemeral session signing key, set IMPORTS_WEB_SESSION_SIGNING_KEY in production")
	}
}

// Session loads or initializes a session and stores it in request context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := readSessionCookie(r)
		if sd.ID == "" {
			sd.ID = randID()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		rw := NewResponseRecorder(w)
		// cookie must be written before the first body byte
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				writeSessionCookie(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// HEAD and 204 responses may never write; persist now
		if !rw.wrote && (sd.dirty || !fromCookie) {
			writeSessionCookie(w, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// SignIn stores the backend token and identity, regenerating the session ID
// to prevent fixation.
func (s *SessionData) SignIn(token string, user *User) {
	s.Token = token
	if user != nil {
		s.UserID = user.ID
		s.Email = user.Email
		s.Name = user.Name
	}
	s.RegenerateID()
}

// SignOut drops the token, identity, and any checkout progress.
func (s *SessionData) SignOut() {
	s.Token = ""
	s.UserID = ""
	s.Email = ""
	s.Name = ""
	s.Checkout = CheckoutProgress{}
	s.RegenerateID()
}

// AddFlash queues a one-shot message for the next rendered page.
func (s *SessionData) AddFlash(tone, message string) {
	s.Flashes = append(s.Flashes, Flash{Tone: tone, Message: message})
	s.MarkDirty()
}

// TakeFlashes returns queued messages and clears them.
func (s *SessionData) TakeFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	s.MarkDirty()
	return out
}

// SetCheckoutProgress records the finalized order so later requests reuse it.
func (s *SessionData) SetCheckoutProgress(p CheckoutProgress) {
	if s.Checkout != p {
		s.Checkout = p
		s.MarkDirty()
	}
}

// ClearCheckoutProgress resets the flow after success or abandonment.
func (s *SessionData) ClearCheckoutProgress() {
	s.SetCheckoutProgress(CheckoutProgress{})
}

// RegenerateID assigns a new session ID and CSRF token to prevent fixation after auth.
func (s *SessionData) RegenerateID() {
	s.ID = randID()
	s.CSRFToken = newCSRFToken()
	s.MarkDirty()
}

// readSessionCookie parses and verifies the session cookie
func readSessionCookie(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return &SessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return &SessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return &SessionData{}, false
	}
	mac := hmac.New(sha256.New, sessionSignKey)
	mac.Write(payloadB)
	if !hmac.Equal(sigB, mac.Sum(nil)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	b, _ := json.Marshal(sd)
	payload := base64.RawURLEncoding.EncodeToString(b)
	mac := hmac.New(sha256.New, sessionSignKey)
	mac.Write(b)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    payload + "." + sig,
		Path:     "/",
		HttpOnly: true,
		Secure:   sessionSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
