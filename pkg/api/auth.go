package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tableflip.dev/backstage/pkg/store"
)

type loginResponse struct {
	Data struct {
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
		User         *store.User `json:"user"`
	} `json:"data"`
}

// Login exchanges email and password for a session and stores it.
func (c *Client) Login(ctx context.Context, email, password string) (*store.User, error) {
	var resp loginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, LoginPath, nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.Data.AccessToken == "" {
		return nil, errors.New("api: login response carried no access token")
	}
	if err := c.creds.SetTokens(ctx, resp.Data.AccessToken, resp.Data.RefreshToken); err != nil {
		return nil, err
	}
	if resp.Data.User != nil {
		if err := c.creds.SetUser(ctx, resp.Data.User); err != nil {
			return nil, err
		}
	}
	return resp.Data.User, nil
}

// Logout tells the server to drop the session, then clears the local
// credentials regardless of the server's answer.
func (c *Client) Logout(ctx context.Context) error {
	session, err := c.creds.Load(ctx)
	if err != nil {
		return err
	}
	if session.LoggedIn() {
		body := map[string]string{"refreshToken": session.RefreshToken}
		if err := c.Do(ctx, http.MethodPost, LogoutPath, nil, body, nil); err != nil {
			c.logger.Debug("server logout failed", zap.Error(err))
		}
	}
	return c.creds.Clear(ctx)
}

// Me returns the profile of the signed-in user and refreshes the stored copy.
func (c *Client) Me(ctx context.Context) (*store.User, error) {
	if store.Token(ctx, c.creds) == "" {
		return nil, store.ErrNotLoggedIn
	}
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, MePath, nil, nil, &raw); err != nil {
		return nil, err
	}
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	// Either {"data": {...user}} or {"data": {"user": {...}}}.
	var wrapped struct {
		User *store.User `json:"user"`
	}
	u := &store.User{}
	if err := json.Unmarshal(resp.Data, &wrapped); err == nil && wrapped.User != nil {
		u = wrapped.User
	} else if err := json.Unmarshal(resp.Data, u); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	if err := c.creds.SetUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
