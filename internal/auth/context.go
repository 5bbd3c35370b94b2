// Package auth holds the bearer token used by the gateway and persists it
// between runs.
package auth

import "sync"

// Context carries the current bearer token. The gateway reads it on every
// request; login and logout write it. Safe for concurrent use.
type Context struct {
	mu       sync.RWMutex
	token    string
	username string
	onChange []func(token string)
}

// NewContext returns a Context seeded with token (may be empty).
func NewContext(token string) *Context {
	return &Context{token: token}
}

// Token returns the current bearer token, or "" when logged out.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Username returns the name the session was opened with, if known.
func (c *Context) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// LoggedIn reports whether a token is present.
func (c *Context) LoggedIn() bool {
	return c.Token() != ""
}

// Set stores a new session.
func (c *Context) Set(username, token string) {
	c.mu.Lock()
	c.username = username
	c.token = token
	hooks := append([]func(string){}, c.onChange...)
	c.mu.Unlock()

	for _, fn := range hooks {
		fn(token)
	}
}

// Clear drops the session. Hooks run only if a token was present.
func (c *Context) Clear() {
	c.mu.Lock()
	had := c.token != ""
	c.token = ""
	c.username = ""
	hooks := append([]func(string){}, c.onChange...)
	c.mu.Unlock()

	if !had {
		return
	}
	for _, fn := range hooks {
		fn("")
	}
}

// OnChange registers fn to run after every Set and every effective Clear.
func (c *Context) OnChange(fn func(token string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}
