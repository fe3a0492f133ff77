package sceneauth

import (
	"encoding/json"
	"net/http"
	"time"
)

const msgOK = "ok"

// Body is the JSON payload written for every operation.
type Body struct {
	Error int    `json:"error"`
	Msg   string `json:"msg"`
}

// OK reports whether the body describes a success.
func (b Body) OK() bool { return b.Error == 0 }

func okBody() Body { return Body{Error: 0, Msg: msgOK} }

func errorBody(msg string) Body { return Body{Error: 1, Msg: msg} }

// Session describes the authenticated session behind a verified token.
type Session struct {
	Scene     string
	SessionID string
	Symbol    map[string]any
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Rotated is true when Verify replaced an expired token.
	Rotated bool
}

// Result is the outcome of an Engine operation: either a [PlainResult] or a
// [CookieResult] that also carries a cookie to set.
type Result interface {
	Payload() Body
	AuthSession() *Session
	isResult()
}

// PlainResult carries only a response body.
type PlainResult struct {
	Body    Body
	Session *Session
}

func (r PlainResult) Payload() Body         { return r.Body }
func (r PlainResult) AuthSession() *Session { return r.Session }
func (PlainResult) isResult()               {}

// CookieResult carries a response body and the scene cookie to write.
type CookieResult struct {
	Cookie  *http.Cookie
	Body    Body
	Session *Session
}

func (r CookieResult) Payload() Body         { return r.Body }
func (r CookieResult) AuthSession() *Session { return r.Session }
func (CookieResult) isResult()               {}

// CookieOf returns the cookie attached to res, or nil for plain results.
func CookieOf(res Result) *http.Cookie {
	if cr, ok := res.(CookieResult); ok {
		return cr.Cookie
	}
	return nil
}

// CookieWriter receives cookies produced by a [CookieResult].
type CookieWriter interface {
	SetCookie(c *http.Cookie)
}

// ResponseCookies adapts an http.ResponseWriter to [CookieWriter].
type ResponseCookies struct {
	http.ResponseWriter
}

func (w ResponseCookies) SetCookie(c *http.Cookie) {
	http.SetCookie(w.ResponseWriter, c)
}

// ApplyCookie writes the cookie carried by res, if any.
func ApplyCookie(w CookieWriter, res Result) {
	if w == nil || res == nil {
		return
	}
	if c := CookieOf(res); c != nil {
		w.SetCookie(c)
	}
}

// WriteResult writes res to w with status 200: the cookie header first, then
// the JSON body. Failures are reported in the body's error field.
func WriteResult(w http.ResponseWriter, res Result) error {
	return WriteResultStatus(w, http.StatusOK, res)
}

// WriteResultStatus is WriteResult with an explicit status code.
func WriteResultStatus(w http.ResponseWriter, status int, res Result) error {
	body := errorBody(ErrUnexpected.Error())
	if res != nil {
		body = res.Payload()
		ApplyCookie(ResponseCookies{w}, res)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
