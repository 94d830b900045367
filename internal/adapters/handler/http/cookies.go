package http

import (
	"net/http"
	"time"

	"github.com/vncsmyrnk/tasks/internal/core/ports"
)

// responseCookieWriter turns the Session Manager's cookie instructions into
// Set-Cookie headers on the response.
type responseCookieWriter struct {
	w http.ResponseWriter
}

var _ ports.CookieWriter = responseCookieWriter{}

func (c responseCookieWriter) SetCookie(name, value string, opts ports.CookieOptions) {
	cookie := newCookie(name, value, opts)
	if opts.MaxAge > 0 {
		cookie.MaxAge = int(opts.MaxAge / time.Second)
		cookie.Expires = time.Now().Add(opts.MaxAge)
	}
	http.SetCookie(c.w, cookie)
}

func (c responseCookieWriter) ClearCookie(name string, opts ports.CookieOptions) {
	cookie := newCookie(name, "", opts)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(c.w, cookie)
}

func newCookie(name, value string, opts ports.CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     opts.Path,
		HttpOnly: opts.HTTPOnly,
		Secure:   opts.Secure,
		SameSite: sameSite(opts.SameSite),
	}
}

func sameSite(s ports.SameSite) http.SameSite {
	switch s {
	case ports.SameSiteStrict:
		return http.SameSiteStrictMode
	case ports.SameSiteNone:
		return http.SameSiteNoneMode
	case ports.SameSiteLax:
		return http.SameSiteLaxMode
	}
	return http.SameSiteDefaultMode
}
