package ioiaso_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aanoble/openhexa-pipelines-iaso/internal/ioiaso"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/config"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/errcode"
	"github.com/aanoble/openhexa-pipelines-iaso/pkg/iaso"
	"github.com/gnames/gn"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(t *testing.T, claims jwt.MapClaims) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	res, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return res
}

// statusOf returns the HTTP status carried by err, 0 when there is none.
func statusOf(err error) int {
	var se *iaso.StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, r chi.Router) *ioiaso.Client {
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	cfg := config.IasoConfig{
		URL:        srv.URL,
		Username:   "pipeline",
		Password:   "secret",
		Timeout:    5 * time.Second,
		RateLimit:  100,
		RateBurst:  10,
		MaxRetries: 2,
	}
	return ioiaso.New(cfg)
}

func tokenRoute(t *testing.T, r chi.Router) {
	access := token(t, jwt.MapClaims{"user_id": 15})
	r.Post("/api/token/", func(w http.ResponseWriter, req *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body["username"] != "pipeline" || body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "no"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": access})
	})
}

func TestUserIDFromToken(t *testing.T) {
	tests := []struct {
		msg    string
		claims jwt.MapClaims
		res    string
	}{
		{msg: "user_id number", claims: jwt.MapClaims{"user_id": 15}, res: "15"},
		{msg: "id string", claims: jwt.MapClaims{"id": "abc"}, res: "abc"},
		{msg: "sub", claims: jwt.MapClaims{"sub": "7"}, res: "7"},
		{msg: "nothing", claims: jwt.MapClaims{"name": "x"}, res: ""},
	}
	for _, v := range tests {
		res, err := ioiaso.UserIDFromToken(token(t, v.claims))
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.res, res, v.msg)
	}

	_, err := ioiaso.UserIDFromToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	r := chi.NewRouter()
	tokenRoute(t, r)
	var auth atomic.Value
	r.Get("/api/forms/{id}/", func(w http.ResponseWriter, req *http.Request) {
		auth.Store(req.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]string{"name": "Household"})
	})
	c := newClient(t, r)
	ctx := context.Background()

	require.NoError(t, c.Authenticate(ctx))
	assert.Equal(t, "15", c.UserID())

	name, err := c.FormName(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Household", name)
	assert.Contains(t, auth.Load().(string), "Bearer ")
}

func TestAuthenticateRefused(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/token/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "no"})
	})
	c := newClient(t, r)

	err := c.Authenticate(context.Background())
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.RemoteAuthError, gnErr.Code)
	assert.Equal(t, http.StatusUnauthorized, statusOf(gnErr.Err))
}

func TestFormMeta(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/forms/{id}/", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "12", chi.URLParam(req, "id"))
		writeJSON(w, http.StatusOK, map[string]any{
			"form_id":           "household_survey",
			"org_unit_type_ids": []int{4, 5},
			"latest_form_version": map[string]any{
				"version_id": 2024011501,
				"xls_file":   "https://files.example.org/hh.xlsx",
			},
		})
	})
	c := newClient(t, r)

	res, err := c.FormMeta(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "household_survey", res.FormID)
	assert.Equal(t, []int{4, 5}, res.OrgUnitTypeIDs)
	assert.Equal(t, "2024011501", res.LatestVersionID)
	assert.Equal(t, "https://files.example.org/hh.xlsx", res.LatestXLSFile)
}

func TestDefinitionURL(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/formversions/", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		assert.Equal(t, "12", q.Get("form_id"))
		if q.Get("version_id") == "missing" {
			writeJSON(w, http.StatusOK, map[string]any{"form_versions": []any{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"form_versions": []map[string]string{
				{"xls_file": ""},
				{"xls_file": "https://files.example.org/v2.xlsx"},
			},
		})
	})
	r.Get("/api/forms/{id}/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"latest_form_version": map[string]any{
				"xls_file": "https://files.example.org/latest.xlsx",
			},
		})
	})
	c := newClient(t, r)
	ctx := context.Background()

	res, err := c.DefinitionURL(ctx, 12, "2")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.org/v2.xlsx", res)

	res, err = c.DefinitionURL(ctx, 12, "missing")
	require.NoError(t, err)
	assert.Empty(t, res)

	res, err = c.DefinitionURL(ctx, 12, "")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.org/latest.xlsx", res)
}

func TestDownloadIsAnonymous(t *testing.T) {
	r := chi.NewRouter()
	tokenRoute(t, r)
	r.Get("/files/{name}", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("content"))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	c := ioiaso.New(config.IasoConfig{
		URL: srv.URL, Username: "pipeline", Password: "secret",
		Timeout: 5 * time.Second, RateLimit: 100, RateBurst: 10,
	})
	ctx := context.Background()
	require.NoError(t, c.Authenticate(ctx))

	res, err := c.Download(ctx, srv.URL+"/files/a.xml")
	require.NoError(t, err)
	assert.Equal(t, "content", string(res))
}

func TestRetries(t *testing.T) {
	t.Run("GET is retried after server errors", func(t *testing.T) {
		var calls atomic.Int32
		r := chi.NewRouter()
		r.Get("/api/projects/{id}/", func(w http.ResponseWriter, req *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"app_id": "org.app"})
		})
		c := newClient(t, r)

		res, err := c.AppID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "org.app", res)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("GET gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		r := chi.NewRouter()
		r.Get("/api/projects/{id}/", func(w http.ResponseWriter, req *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		c := newClient(t, r)

		_, err := c.AppID(context.Background(), 1)
		require.Error(t, err)
		assert.Equal(t, int32(3), calls.Load())
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok)
		assert.Equal(t, errcode.RemoteRequestError, gnErr.Code)
	})

	t.Run("POST is sent once", func(t *testing.T) {
		var calls atomic.Int32
		r := chi.NewRouter()
		r.Post("/api/instances", func(w http.ResponseWriter, req *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		})
		c := newClient(t, r)

		err := c.CreateInstance(context.Background(), "org.app", iaso.NewInstance{})
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, statusOf(err))
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestCreateInstance(t *testing.T) {
	var got []map[string]any
	var appID string
	r := chi.NewRouter()
	r.Post("/api/instances", func(w http.ResponseWriter, req *http.Request) {
		appID = req.URL.Query().Get("app_id")
		_ = json.NewDecoder(req.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, map[string]string{"res": "ok"})
	})
	c := newClient(t, r)

	lat := 5.35
	inst := iaso.NewInstance{
		ID:        "abc",
		OrgUnitID: 42,
		FormID:    12,
		Latitude:  &lat,
		File:      "abc.xml",
		Name:      "abc.xml",
		Period:    2025,
	}
	require.NoError(t, c.CreateInstance(context.Background(), "org.app", inst))
	assert.Equal(t, "org.app", appID)
	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0]["id"])
	assert.Equal(t, 42.0, got[0]["orgUnitId"])
	assert.Equal(t, 5.35, got[0]["latitude"])
	assert.Nil(t, got[0]["longitude"])
}

func TestUploadSubmission(t *testing.T) {
	var name, content string
	status := http.StatusCreated
	r := chi.NewRouter()
	r.Post("/sync/form_upload/", func(w http.ResponseWriter, req *http.Request) {
		f, hdr, err := req.FormFile("xml_submission_file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		name, content = hdr.Filename, string(data)
		w.WriteHeader(status)
	})
	c := newClient(t, r)
	ctx := context.Background()

	require.NoError(t, c.UploadSubmission(ctx, "abc.xml", []byte("<data/>")))
	assert.Equal(t, "abc.xml", name)
	assert.Equal(t, "<data/>", content)

	status = http.StatusOK
	err := c.UploadSubmission(ctx, "abc.xml", []byte("<data/>"))
	assert.Equal(t, http.StatusOK, statusOf(err))
}

func TestUpdateFlow(t *testing.T) {
	var patched map[string]any
	var edited string
	r := chi.NewRouter()
	r.Patch("/api/instances/{id}/", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewDecoder(req.Body).Decode(&patched)
		writeJSON(w, http.StatusOK, map[string]string{})
	})
	r.Get("/api/instances/{id}/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 9, "uuid": "u-9", "file_url": "https://files.example.org/9.xml",
		})
	})
	r.Get("/api/enketo/edit/{uuid}/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"edit_url": "/enketo/submission/9",
		})
	})
	r.Post("/enketo/submission/{id}", func(w http.ResponseWriter, req *http.Request) {
		f, _, err := req.FormFile("xml_submission_file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		edited = string(data)
		w.WriteHeader(http.StatusCreated)
	})
	c := newClient(t, r)
	ctx := context.Background()

	ou := int64(77)
	err := c.PatchInstance(ctx, 9, iaso.InstancePatch{OrgUnitID: &ou})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"org_unit": 77.0}, patched)

	inst, err := c.Instance(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, iaso.Instance{
		ID: 9, UUID: "u-9", FileURL: "https://files.example.org/9.xml",
	}, inst)

	editURL, err := c.EditURL(ctx, inst.UUID)
	require.NoError(t, err)
	require.NoError(t, c.SubmitEdit(ctx, editURL, "u-9.xml", []byte("<data/>")))
	assert.Equal(t, "<data/>", edited)
}

func TestDeleteInstance(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/api/instances/{id}", func(w http.ResponseWriter, req *http.Request) {
		switch chi.URLParam(req, "id") {
		case "1":
			w.WriteHeader(http.StatusNoContent)
		case "2":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	c := newClient(t, r)
	ctx := context.Background()

	assert.NoError(t, c.DeleteInstance(ctx, 1))
	assert.NoError(t, c.DeleteInstance(ctx, 2))
	err := c.DeleteInstance(ctx, 3)
	assert.Equal(t, http.StatusNotFound, statusOf(err))
}

func TestProfile(t *testing.T) {
	tests := []struct {
		msg  string
		body map[string]any
		res  iaso.Profile
	}{
		{
			msg: "lists",
			body: map[string]any{
				"permissions": []string{"iaso_update_submission"},
				"account":     map[string]string{"name": "org.app"},
			},
			res: iaso.Profile{
				Permissions: []string{"iaso_update_submission"},
				Accounts:    []string{"org.app"},
			},
		},
		{
			msg: "map and account list",
			body: map[string]any{
				"user_permissions": map[string]bool{"iaso_forms": true},
				"account": []map[string]string{
					{"name": "a"}, {"name": "b"},
				},
			},
			res: iaso.Profile{
				Permissions: []string{"iaso_forms"},
				Accounts:    []string{"a", "b"},
			},
		},
	}
	for _, v := range tests {
		r := chi.NewRouter()
		r.Get("/api/profiles/me/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, v.body)
		})
		c := newClient(t, r)
		res, err := c.Profile(context.Background())
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestAppIDMissing(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/projects/{id}/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"app_id": ""})
	})
	c := newClient(t, r)

	_, err := c.AppID(context.Background(), 8)
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.ProjectAppIDError, gnErr.Code)
	assert.Equal(t, []any{8}, gnErr.Vars)
}
