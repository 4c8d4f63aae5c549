package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RemoteStore talks to the hosted object storage provider over HTTP. Every
// call carries a bounded timeout so one slow remote write cannot stall a
// request indefinitely; credentials are the provider's concern beyond the API
// key header.
type RemoteStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRemoteStore(baseURL, apiKey string, timeout time.Duration) *RemoteStore {
	return &RemoteStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type remotePutResponse struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

func (s *RemoteStore) Put(ctx context.Context, path string, data []byte) (StoredObject, error) {
	endpoint := fmt.Sprintf("%s/objects/%s", s.baseURL, url.PathEscape(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(data))
	if err != nil {
		return StoredObject{}, fmt.Errorf("build object store request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return StoredObject{}, fmt.Errorf("object store put: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return StoredObject{}, fmt.Errorf("object store returned %d: %s", resp.StatusCode, string(body))
	}

	var out remotePutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return StoredObject{}, fmt.Errorf("decode object store response: %w", err)
	}
	if out.Path == "" {
		out.Path = path
	}
	return StoredObject{ID: out.ID, Path: out.Path}, nil
}
