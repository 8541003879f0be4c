package ioiaso

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
)

// AppID returns the application id of a project.
func (c *Client) AppID(ctx context.Context, projectID int) (string, error) {
	var res struct {
		AppID string `json:"app_id"`
	}
	path := fmt.Sprintf("/api/projects/%d/", projectID)
	q := url.Values{"fields": {"app_id"}}
	if err := c.getJSON(ctx, path, q, &res); err != nil {
		return "", RequestError("project app_id", err)
	}
	if res.AppID == "" {
		return "", AppIDError(projectID)
	}
	return res.AppID, nil
}

// Profile returns permissions and account names of the current user.
func (c *Client) Profile(ctx context.Context) (iaso.Profile, error) {
	var res iaso.Profile
	var raw struct {
		Permissions     json.RawMessage `json:"permissions"`
		UserPermissions json.RawMessage `json:"user_permissions"`
		Account         json.RawMessage `json:"account"`
	}
	if err := c.getJSON(ctx, "/api/profiles/me/", nil, &raw); err != nil {
		return res, RequestError("user profile", err)
	}

	res.Permissions = append(permissions(raw.Permissions),
		permissions(raw.UserPermissions)...)
	res.Accounts = accounts(raw.Account)
	return res, nil
}

// permissions accepts a list of names or a map keyed by name.
func permissions(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err == nil {
		res := make([]string, 0, len(m))
		for k := range m {
			res = append(res, k)
		}
		return res
	}
	return nil
}

// accounts accepts one account object or a list of them.
func accounts(raw json.RawMessage) []string {
	type account struct {
		Name string `json:"name"`
	}
	if len(raw) == 0 {
		return nil
	}
	var one account
	if err := json.Unmarshal(raw, &one); err == nil {
		if one.Name == "" {
			return nil
		}
		return []string{one.Name}
	}
	var list []*account
	if err := json.Unmarshal(raw, &list); err == nil {
		var res []string
		for _, v := range list {
			if v != nil && v.Name != "" {
				res = append(res, v.Name)
			}
		}
		return res
	}
	return nil
}
