// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithJar builds a client that carries cookies between requests.
// The REST claims backend sets a CSRF cookie on first contact; the jar keeps
// it available for credentialed writes.
func NewClientWithJar(timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// Cookie returns the named cookie stored for u, or nil when absent.
func (c *Client) Cookie(u *url.URL, name string) *http.Cookie {
	if c.httpClient.Jar == nil {
		return nil
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// SetCookie stores a cookie for u. Used by tests and by callers that receive
// the CSRF token out of band.
func (c *Client) SetCookie(u *url.URL, ck *http.Cookie) {
	if c.httpClient.Jar != nil {
		c.httpClient.Jar.SetCookies(u, []*http.Cookie{ck})
	}
}
