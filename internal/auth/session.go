package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/Ilan9903/Juris-IA/internal"
)

// CookieSession stores the session token in a signed, http-only cookie.
type CookieSession struct {
	codec  *securecookie.SecureCookie
	name   string
	domain string
	ttl    time.Duration
	secure bool
}

func NewCookieSession(cfg internal.SecurityConfig, production bool) *CookieSession {
	ttl := cfg.TokenDuration
	if ttl <= 0 {
		ttl = internal.DefaultTokenDuration
	}
	name := cfg.CookieName
	if name == "" {
		name = internal.DefaultCookieName
	}

	codec := securecookie.New([]byte(cfg.CookieSecret), nil)
	codec.MaxAge(int(ttl.Seconds()))

	return &CookieSession{
		codec:  codec,
		name:   name,
		domain: cfg.CookieDomain,
		ttl:    ttl,
		secure: production,
	}
}

func (s *CookieSession) Name() string {
	return s.name
}

func (s *CookieSession) Write(w http.ResponseWriter, token string) error {
	encoded, err := s.codec.Encode(s.name, token)
	if err != nil {
		return err
	}
	cookie := s.base()
	cookie.Value = encoded
	cookie.Expires = time.Now().Add(s.ttl)
	cookie.MaxAge = int(s.ttl.Seconds())
	http.SetCookie(w, cookie)
	return nil
}

// Read returns the token carried by the cookie. A missing cookie is ErrMissingToken,
// a bad signature ErrInvalidToken.
func (s *CookieSession) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return "", internal.ErrMissingToken
	}
	var token string
	if err := s.codec.Decode(s.name, cookie.Value, &token); err != nil {
		return "", internal.ErrInvalidToken.WithCause(err)
	}
	if token == "" {
		return "", internal.ErrMissingToken
	}
	return token, nil
}

func (s *CookieSession) Clear(w http.ResponseWriter) {
	cookie := s.base()
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

func (s *CookieSession) base() *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     s.name,
		Path:     "/",
		Domain:   s.domain,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: sameSite,
	}
}
