package client

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pixelshop-dev/pixelshop/internal/cli/auth"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

// cookieURL is the origin the auth cookies are scoped to (Path=/)
func (c *Client) cookieURL() *url.URL {
	return &url.URL{Scheme: c.baseURL.Scheme, Host: c.baseURL.Host, Path: "/"}
}

// serverKey identifies this API in the token store
func (c *Client) serverKey() string {
	return c.baseURL.String()
}

// restoreCookies loads a previously persisted token pair into the jar
func (c *Client) restoreCookies() {
	tokens, err := c.tokens.LoadTokens(c.serverKey())
	if err != nil {
		if !errors.Is(err, auth.ErrNotAuthenticated) {
			c.logger.Warn().Err(err).Msg("failed to load stored tokens")
		}
		return
	}

	var cookies []*http.Cookie
	if tokens.Access != "" {
		cookies = append(cookies, &http.Cookie{Name: accessCookie, Value: tokens.Access, Path: "/"})
	}
	if tokens.Refresh != "" {
		cookies = append(cookies, &http.Cookie{Name: refreshCookie, Value: tokens.Refresh, Path: "/"})
	}
	c.jar.SetCookies(c.cookieURL(), cookies)
}

// currentTokens reads the token pair currently held by the jar
func (c *Client) currentTokens() auth.Tokens {
	var tokens auth.Tokens
	for _, cookie := range c.jar.Cookies(c.cookieURL()) {
		switch cookie.Name {
		case accessCookie:
			tokens.Access = cookie.Value
		case refreshCookie:
			tokens.Refresh = cookie.Value
		}
	}
	return tokens
}

// persistCookies writes the jar's token pair to the token store
func (c *Client) persistCookies() {
	tokens := c.currentTokens()
	var err error
	if tokens.Empty() {
		err = c.tokens.DeleteTokens(c.serverKey())
	} else {
		err = c.tokens.SaveTokens(c.serverKey(), tokens)
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to persist tokens")
	}
}

// clearCookies expires both auth cookies and forgets the stored pair
func (c *Client) clearCookies() {
	c.jar.SetCookies(c.cookieURL(), []*http.Cookie{
		{Name: accessCookie, Value: "", Path: "/", MaxAge: -1},
		{Name: refreshCookie, Value: "", Path: "/", MaxAge: -1},
	})
	if err := c.tokens.DeleteTokens(c.serverKey()); err != nil {
		c.logger.Warn().Err(err).Msg("failed to delete stored tokens")
	}
}

// HasTokens reports whether any auth cookie is held for this server
func (c *Client) HasTokens() bool {
	return !c.currentTokens().Empty()
}

// AccessTokenExpiry reads the exp claim of the current access token.
// The token is not verified; the server remains the authority.
func (c *Client) AccessTokenExpiry() (time.Time, bool) {
	token := c.currentTokens().Access
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
