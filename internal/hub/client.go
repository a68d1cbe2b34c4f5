// Package hub is a minimal client for the model-hosting hub's REST API:
// token verification, repository creation, and file upload/download.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	comerrors "housepredict/internal/common/errors"
	"housepredict/internal/common/httpclient"
	"housepredict/internal/common/logger"
	"housepredict/internal/common/metrics"
)

type Client struct {
	baseURL string
	token   string
	http    *httpclient.Client
	log     logger.Logger
}

func NewClient(baseURL, token string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    httpclient.NewClient(timeout),
		log:     log,
	}
}

// Whoami verifies the token and returns the authenticated account name.
func (c *Client) Whoami(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/whoami-v2", nil)
	if err != nil {
		return "", fmt.Errorf("create whoami request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute whoami request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode whoami response: %w", err)
	}
	return body.Name, nil
}

// CreateRepo creates a model repository if it does not already exist. An
// already-existing repository is not an error.
func (c *Client) CreateRepo(ctx context.Context, repoID string, private bool) error {
	org, name := splitRepoID(repoID)
	payload := map[string]interface{}{
		"type":    "model",
		"name":    name,
		"private": private,
	}
	if org != "" {
		payload["organization"] = org
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal create-repo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/repos/create", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create create-repo request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute create-repo request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict:
		c.log.Info("repository already exists", map[string]interface{}{"repo": repoID})
		return nil
	default:
		return readAPIError(resp)
	}
}

// UploadFile uploads a local file into the repository under pathInRepo.
func (c *Client) UploadFile(ctx context.Context, repoID, localPath, pathInRepo string) error {
	f, err := os.Open(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return comerrors.NewArtifactNotFoundError(localPath)
		}
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(localPath))
	if err != nil {
		return fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("read %s: %w", localPath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/api/models/%s/upload/main/%s", c.baseURL, repoID, pathInRepo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.HubUploadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		metrics.HubUploadsTotal.WithLabelValues("error").Inc()
		return readAPIError(resp)
	}
	metrics.HubUploadsTotal.WithLabelValues("success").Inc()
	return nil
}

// DownloadFile streams a repository file to dest. A 404 is reported as
// ArtifactNotFound so callers can distinguish it from transport failures.
func (c *Client) DownloadFile(ctx context.Context, repoID, filename, dest string) error {
	url := fmt.Sprintf("%s/%s/resolve/main/%s", c.baseURL, repoID, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return comerrors.NewArtifactNotFoundError(repoID + "/" + filename)
	}
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func splitRepoID(repoID string) (org, name string) {
	if i := strings.Index(repoID, "/"); i >= 0 {
		return repoID[:i], repoID[i+1:]
	}
	return "", repoID
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return comerrors.NewHubRequestFailedError(resp.StatusCode, strings.TrimSpace(string(body)))
}
