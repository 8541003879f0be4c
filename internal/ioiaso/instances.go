package ioiaso

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
)

// CreateInstance registers a new instance of the application.
func (c *Client) CreateInstance(
	ctx context.Context,
	appID string,
	inst iaso.NewInstance,
) error {
	path := "/api/instances"
	q := url.Values{"app_id": {appID}}
	body := []iaso.NewInstance{inst}
	resp, err := c.sendJSON(ctx, http.MethodPost, path, q, body)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK && resp.status != http.StatusCreated {
		return statusError(request{method: http.MethodPost, path: path}, resp)
	}
	return nil
}

// UploadSubmission sends the XML document of a created instance.
func (c *Client) UploadSubmission(
	ctx context.Context,
	name string,
	doc []byte,
) error {
	path := "/sync/form_upload/"
	resp, err := c.sendFile(ctx, path, "xml_submission_file", name, doc)
	if err != nil {
		return err
	}
	if resp.status != http.StatusCreated {
		return statusError(request{method: http.MethodPost, path: path}, resp)
	}
	return nil
}

// PatchInstance changes attributes of an existing instance.
func (c *Client) PatchInstance(
	ctx context.Context,
	id int64,
	patch iaso.InstancePatch,
) error {
	path := fmt.Sprintf("/api/instances/%d/", id)
	resp, err := c.sendJSON(ctx, http.MethodPatch, path, nil, patch)
	if err != nil {
		return err
	}
	if !resp.isSuccess() {
		return statusError(request{method: http.MethodPatch, path: path}, resp)
	}
	return nil
}

// Instance returns an existing instance.
func (c *Client) Instance(ctx context.Context, id int64) (iaso.Instance, error) {
	var res iaso.Instance
	var raw struct {
		ID      int64  `json:"id"`
		UUID    string `json:"uuid"`
		FileURL string `json:"file_url"`
	}
	path := fmt.Sprintf("/api/instances/%d/", id)
	if err := c.getJSON(ctx, path, nil, &raw); err != nil {
		return res, err
	}
	res = iaso.Instance{ID: raw.ID, UUID: raw.UUID, FileURL: raw.FileURL}
	if res.ID == 0 {
		res.ID = id
	}
	return res, nil
}

// EditURL opens an edit session for the instance with the given UUID.
func (c *Client) EditURL(ctx context.Context, uuid string) (string, error) {
	var res struct {
		EditURL string `json:"edit_url"`
	}
	path := fmt.Sprintf("/api/enketo/edit/%s/", uuid)
	if err := c.getJSON(ctx, path, nil, &res); err != nil {
		return "", err
	}
	if res.EditURL == "" {
		return "", fmt.Errorf("no edit_url for instance %s", uuid)
	}
	return res.EditURL, nil
}

// SubmitEdit posts an edited document to an edit session.
func (c *Client) SubmitEdit(
	ctx context.Context,
	editURL, name string,
	doc []byte,
) error {
	resp, err := c.sendFile(ctx, editURL, "xml_submission_file", name, doc)
	if err != nil {
		return err
	}
	if !resp.isSuccess() {
		return statusError(request{method: http.MethodPost, path: editURL}, resp)
	}
	return nil
}

// DeleteInstance removes an instance.
func (c *Client) DeleteInstance(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/instances/%d", id)
	resp, err := c.do(ctx, request{method: http.MethodDelete, path: path})
	if err != nil {
		return err
	}
	switch resp.status {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	}
	return statusError(request{method: http.MethodDelete, path: path}, resp)
}
