package ioiaso

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
)

// flexString accepts JSON strings and numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type formVersion struct {
	VersionID flexString `json:"version_id"`
	XLSFile   string     `json:"xls_file"`
}

// FormName returns the name of a form.
func (c *Client) FormName(ctx context.Context, formID int) (string, error) {
	var res struct {
		Name string `json:"name"`
	}
	path := fmt.Sprintf("/api/forms/%d/", formID)
	q := url.Values{"fields": {"name"}}
	if err := c.getJSON(ctx, path, q, &res); err != nil {
		return "", RequestError("form name", err)
	}
	return res.Name, nil
}

// FormMeta returns the form id, org unit types and latest version of a
// form.
func (c *Client) FormMeta(ctx context.Context, formID int) (iaso.FormMeta, error) {
	var res iaso.FormMeta
	var meta struct {
		FormID         flexString   `json:"form_id"`
		OrgUnitTypeIDs []int        `json:"org_unit_type_ids"`
		Latest         *formVersion `json:"latest_form_version"`
	}
	path := fmt.Sprintf("/api/forms/%d/", formID)
	q := url.Values{"fields": {"form_id,org_unit_type_ids,latest_form_version"}}
	if err := c.getJSON(ctx, path, q, &meta); err != nil {
		return res, RequestError("form metadata", err)
	}

	res.FormID = string(meta.FormID)
	res.OrgUnitTypeIDs = meta.OrgUnitTypeIDs
	if meta.Latest != nil {
		res.LatestVersionID = string(meta.Latest.VersionID)
		res.LatestXLSFile = meta.Latest.XLSFile
	}
	return res, nil
}

// DefinitionURL finds the definition file of a form version. Without a
// version the latest definition is used.
func (c *Client) DefinitionURL(
	ctx context.Context,
	formID int,
	version string,
) (string, error) {
	if version != "" {
		var res struct {
			FormVersions []formVersion `json:"form_versions"`
		}
		q := url.Values{
			"form_id":    {strconv.Itoa(formID)},
			"version_id": {version},
			"fields":     {"xls_file"},
		}
		if err := c.getJSON(ctx, "/api/formversions/", q, &res); err != nil {
			return "", err
		}
		for _, v := range res.FormVersions {
			if v.XLSFile != "" {
				return v.XLSFile, nil
			}
		}
		return "", nil
	}

	var res struct {
		Latest *formVersion `json:"latest_form_version"`
	}
	path := fmt.Sprintf("/api/forms/%d/", formID)
	q := url.Values{"fields": {"latest_form_version"}}
	if err := c.getJSON(ctx, path, q, &res); err != nil {
		return "", err
	}
	if res.Latest == nil {
		return "", nil
	}
	return res.Latest.XLSFile, nil
}

// Download fetches a file without the bearer token. Definition files are
// served from storage that rejects foreign authorization headers.
func (c *Client) Download(ctx context.Context, u string) ([]byte, error) {
	req := request{method: http.MethodGet, path: u, anonymous: true}
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.isSuccess() {
		return nil, statusError(req, resp)
	}
	return resp.body, nil
}
