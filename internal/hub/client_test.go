package hub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	comerrors "housepredict/internal/common/errors"
	"housepredict/internal/common/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "hf_test_token", 5*time.Second, logger.NewTestLogger(t))
}

func TestWhoami(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/whoami-v2", r.URL.Path)
		assert.Equal(t, "Bearer hf_test_token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"name": "niru-nny"})
	}))

	name, err := c.Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "niru-nny", name)
}

func TestWhoami_Unauthorized(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
	}))

	_, err := c.Whoami(context.Background())
	require.Error(t, err)
	assert.Equal(t, comerrors.ErrCodeHubRequestFailed, comerrors.CodeOf(err))

	var se *comerrors.StandardError
	require.True(t, comerrors.AsStandard(err, &se))
	assert.False(t, se.Retryable)
	assert.Contains(t, se.Details, "Invalid token")
}

func TestCreateRepo(t *testing.T) {
	tests := []struct {
		name    string
		repoID  string
		status  int
		wantErr bool
		wantOrg string
	}{
		{"created", "niru-nny/house-price-prediction", http.StatusOK, false, "niru-nny"},
		{"created 201", "house-price-prediction", http.StatusCreated, false, ""},
		{"already exists is not an error", "niru-nny/house-price-prediction", http.StatusConflict, false, "niru-nny"},
		{"forbidden", "niru-nny/house-price-prediction", http.StatusForbidden, true, "niru-nny"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/repos/create", r.URL.Path)

				var payload map[string]interface{}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				assert.Equal(t, "model", payload["type"])
				assert.Equal(t, "house-price-prediction", payload["name"])
				if tt.wantOrg != "" {
					assert.Equal(t, tt.wantOrg, payload["organization"])
				} else {
					assert.NotContains(t, payload, "organization")
				}
				w.WriteHeader(tt.status)
			}))

			err := c.CreateRepo(context.Background(), tt.repoID, false)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, comerrors.ErrCodeHubRequestFailed, comerrors.CodeOf(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUploadFile(t *testing.T) {
	local := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, os.WriteFile(local, []byte("model-bytes"), 0o644))

	var uploaded []byte
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/models/niru-nny/house-price-prediction/upload/main/model.gob", r.URL.Path)

		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		uploaded, err = io.ReadAll(f)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
	}))

	err := c.UploadFile(context.Background(), "niru-nny/house-price-prediction", local, "model.gob")
	require.NoError(t, err)
	assert.Equal(t, []byte("model-bytes"), uploaded)
}

func TestUploadFile_MissingLocalFile(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for a missing local file")
	}))

	err := c.UploadFile(context.Background(), "org/repo", filepath.Join(t.TempDir(), "nope.gob"), "nope.gob")
	require.Error(t, err)
	assert.Equal(t, comerrors.ErrCodeArtifactNotFound, comerrors.CodeOf(err))
}

func TestDownloadFile(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/niru-nny/house-price-prediction/resolve/main/model.gob", r.URL.Path)
		w.Write([]byte("model-bytes"))
	}))

	dest := filepath.Join(t.TempDir(), "model.gob")
	err := c.DownloadFile(context.Background(), "niru-nny/house-price-prediction", "model.gob", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "model-bytes", string(data))
}

func TestDownloadFile_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	dest := filepath.Join(t.TempDir(), "model.gob")
	err := c.DownloadFile(context.Background(), "org/repo", "model.gob", dest)
	require.Error(t, err)
	assert.Equal(t, comerrors.ErrCodeArtifactNotFound, comerrors.CodeOf(err))
	assert.NoFileExists(t, dest)
}

func TestDownloadFile_ServerErrorIsRetryable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	err := c.DownloadFile(context.Background(), "org/repo", "model.gob", filepath.Join(t.TempDir(), "model.gob"))
	require.Error(t, err)
	var se *comerrors.StandardError
	require.True(t, comerrors.AsStandard(err, &se))
	assert.True(t, se.Retryable)
}

func TestSplitRepoID(t *testing.T) {
	tests := []struct {
		repoID   string
		wantOrg  string
		wantName string
	}{
		{"niru-nny/house-price-prediction", "niru-nny", "house-price-prediction"},
		{"house-price-prediction", "", "house-price-prediction"},
	}
	for _, tt := range tests {
		org, name := splitRepoID(tt.repoID)
		assert.Equal(t, tt.wantOrg, org, tt.repoID)
		assert.Equal(t, tt.wantName, name, tt.repoID)
	}
}
