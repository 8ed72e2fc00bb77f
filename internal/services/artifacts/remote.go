package artifacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	xhttp "SmartRental/pkg/http"
)

// RemoteModel serves classifier and regressor calls from an HTTP model service.
//
//	POST {base}/classify/{name}  {"features": {...}} -> {"probability": p}
//	POST {base}/regress/{name}   {"features": {...}} -> {"value": v}
type RemoteModel struct {
	baseURL  string
	client   *xhttp.Client
	attempts int
}

func NewRemoteModel(baseURL string, timeout time.Duration, attempts int) *RemoteModel {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &RemoteModel{
		baseURL:  baseURL,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithHeader("User-Agent", "smartrental-api")),
		attempts: attempts,
	}
}

type remoteRequest struct {
	Features map[string]float64 `json:"features"`
}

// postJSON posts payload to path under baseURL and decodes the JSON answer into dest.
func (m *RemoteModel) postJSON(ctx context.Context, path string, payload, dest interface{}) error {
	if m.client == nil || m.baseURL == "" {
		return fmt.Errorf("model service client not initialized")
	}
	err := m.client.DoJSON(ctx, xhttp.MethodPost, m.baseURL+path, payload, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// postJSONWithRetry retries transport failures and 429/5xx answers only.
func (m *RemoteModel) postJSONWithRetry(ctx context.Context, path string, payload, dest interface{}) error {
	var err error
	for i := 1; ; i++ {
		err = m.postJSON(ctx, path, payload, dest)
		if err == nil || i >= m.attempts || !temporary(err) {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func temporary(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

// Classifier returns a classifier backed by the remote model called name.
func (m *RemoteModel) Classifier(name string) *RemoteClassifier {
	return &RemoteClassifier{m: m, path: "/classify/" + name}
}

// Regressor returns a regressor backed by the remote model called name.
func (m *RemoteModel) Regressor(name string) *RemoteRegressor {
	return &RemoteRegressor{m: m, path: "/regress/" + name}
}

type RemoteClassifier struct {
	m    *RemoteModel
	path string
}

func (c *RemoteClassifier) Classify(ctx context.Context, row map[string]float64) (float64, error) {
	var out struct {
		Probability *float64 `json:"probability"`
	}
	if err := c.m.postJSONWithRetry(ctx, c.path, remoteRequest{Features: row}, &out); err != nil {
		return 0, err
	}
	if out.Probability == nil || !finite(*out.Probability) || *out.Probability < 0 || *out.Probability > 1 {
		return 0, fmt.Errorf("model service returned no valid probability")
	}
	return *out.Probability, nil
}

type RemoteRegressor struct {
	m    *RemoteModel
	path string
}

func (r *RemoteRegressor) Regress(ctx context.Context, row map[string]float64) (float64, error) {
	var out struct {
		Value *float64 `json:"value"`
	}
	if err := r.m.postJSONWithRetry(ctx, r.path, remoteRequest{Features: row}, &out); err != nil {
		return 0, err
	}
	if out.Value == nil || !finite(*out.Value) {
		return 0, fmt.Errorf("model service returned no valid value")
	}
	return *out.Value, nil
}
