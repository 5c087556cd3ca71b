package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/producelens/internal/domain"
)

// RemoteConfig configures a TensorFlow-Serving compatible REST endpoint.
type RemoteConfig struct {
	BaseURL   string
	ModelName string
	APIKey    string
	Timeout   time.Duration // zero leaves requests unbounded
}

// RemoteClassifier sends tensors to a model server speaking the
// TensorFlow-Serving REST predict API.
type RemoteClassifier struct {
	client   *resty.Client
	endpoint string
}

type predictRequest struct {
	Instances [][][][]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float32 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

// NewRemoteClassifier creates a client for POST {base}/v1/models/{name}:predict.
func NewRemoteClassifier(cfg RemoteConfig) *RemoteClassifier {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:8501"
	}
	model := cfg.ModelName
	if model == "" {
		model = "produce"
	}

	return &RemoteClassifier{
		client:   client,
		endpoint: fmt.Sprintf("%s/v1/models/%s:predict", baseURL, model),
	}
}

// Predict posts the tensor as a single instance and returns the first prediction row.
func (c *RemoteClassifier) Predict(ctx context.Context, input *domain.Tensor) ([]float32, error) {
	instances, err := nestNHWC(input)
	if err != nil {
		return nil, inferenceErr("%v", err)
	}

	var resp predictResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(predictRequest{Instances: instances}).
		SetResult(&resp).
		SetError(&resp).
		Post(c.endpoint)
	if err != nil {
		return nil, inferenceErr("failed to call model server: %v", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := string(httpResp.Body())
		if resp.Error != "" {
			errorMsg = resp.Error
		}
		return nil, inferenceErr("model server returned HTTP %d: %s", httpResp.StatusCode(), errorMsg)
	}
	if resp.Error != "" {
		return nil, inferenceErr("model server error: %s", resp.Error)
	}
	if len(resp.Predictions) == 0 {
		return nil, inferenceErr("no predictions in response")
	}

	return resp.Predictions[0], nil
}

// OutputSize is not known before the first call.
func (c *RemoteClassifier) OutputSize() int { return 0 }

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (c *RemoteClassifier) Close() error { return nil }

// nestNHWC reshapes a flat [N, H, W, C] tensor into nested slices.
func nestNHWC(t *domain.Tensor) ([][][][]float32, error) {
	if len(t.Shape) != 4 {
		return nil, fmt.Errorf("expected rank-4 tensor, got shape %v", t.Shape)
	}
	n, h, w, ch := int(t.Shape[0]), int(t.Shape[1]), int(t.Shape[2]), int(t.Shape[3])
	if n*h*w*ch != len(t.Data) {
		return nil, fmt.Errorf("shape %v does not match %d values", t.Shape, len(t.Data))
	}

	out := make([][][][]float32, n)
	off := 0
	for i := range out {
		out[i] = make([][][]float32, h)
		for y := range out[i] {
			out[i][y] = make([][]float32, w)
			for x := range out[i][y] {
				out[i][y][x] = t.Data[off : off+ch : off+ch]
				off += ch
			}
		}
	}
	return out, nil
}
