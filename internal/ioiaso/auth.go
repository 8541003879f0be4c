package ioiaso

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticate obtains a bearer token and remembers the user id stored in
// its payload.
func (c *Client) Authenticate(ctx context.Context) error {
	payload := map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	}
	resp, err := c.sendJSON(ctx, http.MethodPost, "/api/token/", nil, payload)
	if err != nil {
		return AuthError(c.cfg.URL, c.cfg.Username, err)
	}
	if !resp.isSuccess() {
		req := request{method: http.MethodPost, path: "/api/token/"}
		return AuthError(c.cfg.URL, c.cfg.Username, statusError(req, resp))
	}

	var res struct {
		Access string `json:"access"`
	}
	if err = resp.decode(&res); err != nil {
		return AuthError(c.cfg.URL, c.cfg.Username, err)
	}
	if res.Access == "" {
		err = errors.New("token response has no access token")
		return AuthError(c.cfg.URL, c.cfg.Username, err)
	}

	c.token = res.Access
	c.userID, err = UserIDFromToken(res.Access)
	if err != nil {
		return AuthError(c.cfg.URL, c.cfg.Username, err)
	}
	return nil
}

// UserID returns the id of the authenticated user.
func (c *Client) UserID() string {
	return c.userID
}

// UserIDFromToken reads the user id from the claims user_id, id or sub
// of a token. The signature is not verified.
func UserIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	_, _, err := new(jwt.Parser).ParseUnverified(token, claims)
	if err != nil {
		return "", fmt.Errorf("cannot decode token: %w", err)
	}
	for _, k := range []string{"user_id", "id", "sub"} {
		if s := claimString(claims[k]); s != "" {
			return s, nil
		}
	}
	return "", nil
}

func claimString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	}
	return ""
}
