package sceneauth

import (
	"net/http"
	"regexp"
	"time"
)

const cookieSuffix = "_token"

var sceneNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CookieReader is satisfied by *http.Request.
type CookieReader interface {
	Cookie(name string) (*http.Cookie, error)
}

// CookieConfig controls attributes of the scene cookie.
type CookieConfig struct {
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
	// MaxAge bounds the browser lifetime of the cookie. Zero makes it a session cookie.
	MaxAge time.Duration
}

// CookieName returns the cookie name used for scene.
func CookieName(scene string) string {
	return scene + cookieSuffix
}

// ValidateScene reports whether scene is usable as a cookie prefix and claim value.
func ValidateScene(scene string) error {
	if !sceneNamePattern.MatchString(scene) {
		return ErrInvalidScene
	}
	return nil
}

func readToken(cookies CookieReader, scene string) string {
	if cookies == nil {
		return ""
	}
	c, err := cookies.Cookie(CookieName(scene))
	if err != nil || c == nil {
		return ""
	}
	return c.Value
}

func (c CookieConfig) tokenCookie(scene, value string) *http.Cookie {
	cookie := c.base(scene)
	cookie.Value = value
	if c.MaxAge > 0 {
		cookie.MaxAge = int(c.MaxAge / time.Second)
	}
	return cookie
}

func (c CookieConfig) clearedCookie(scene string) *http.Cookie {
	cookie := c.base(scene)
	cookie.Value = ""
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}

func (c CookieConfig) base(scene string) *http.Cookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:     CookieName(scene),
		Path:     path,
		Domain:   c.Domain,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
		SameSite: c.SameSite,
	}
}
