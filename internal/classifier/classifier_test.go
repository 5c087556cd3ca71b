package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/producelens/internal/domain"
)

func TestArgmax(t *testing.T) {
	testCases := []struct {
		name    string
		probs   []float32
		wantIdx int
		wantVal float32
	}{
		{"first", []float32{0.9, 0.1}, 0, 0.9},
		{"last", []float32{0.1, 0.2, 0.7}, 2, 0.7},
		{"tie takes lowest index", []float32{0.2, 0.4, 0.4}, 1, 0.4},
		{"all equal", []float32{0.25, 0.25, 0.25, 0.25}, 0, 0.25},
		{"single", []float32{1}, 0, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			idx, val, err := Argmax(tc.probs)
			require.NoError(t, err)
			assert.Equal(t, tc.wantIdx, idx)
			assert.Equal(t, tc.wantVal, val)
		})
	}

	_, _, err := Argmax(nil)
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	var c Classifier = Func(func(ctx context.Context, input *domain.Tensor) ([]float32, error) {
		return []float32{0.3, 0.7}, nil
	})
	probs, err := c.Predict(context.Background(), domain.NewImageTensor(2))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.3, 0.7}, probs)
	assert.Equal(t, 0, c.OutputSize())
	assert.NoError(t, c.Close())
}

func TestNewUnknownEngine(t *testing.T) {
	_, err := New(Config{Engine: "tensorrt"}, 3)
	assert.Error(t, err)
}

func TestNewONNXRequiresModel(t *testing.T) {
	_, err := New(Config{Engine: EngineONNX}, 3)
	assert.Error(t, err)
}

func TestNestNHWC(t *testing.T) {
	tensor := &domain.Tensor{
		Shape: []int64{1, 2, 2, 3},
		Data:  []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	}
	nested, err := nestNHWC(tensor)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2}, nested[0][0][0])
	assert.Equal(t, []float32{3, 4, 5}, nested[0][0][1])
	assert.Equal(t, []float32{9, 10, 11}, nested[0][1][1])

	_, err = nestNHWC(&domain.Tensor{Shape: []int64{1, 2, 2, 3}, Data: []float32{1}})
	assert.Error(t, err)
	_, err = nestNHWC(&domain.Tensor{Shape: []int64{4}, Data: make([]float32, 4)})
	assert.Error(t, err)
}

func TestRemoteClassifierPredict(t *testing.T) {
	var got predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models/produce:predict", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions": [[0.1, 0.85, 0.05]]}`))
	}))
	defer srv.Close()

	c := NewRemoteClassifier(RemoteConfig{BaseURL: srv.URL + "/", ModelName: "produce", APIKey: "secret"})
	probs, err := c.Predict(context.Background(), domain.NewImageTensor(4))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.85, 0.05}, probs)

	require.Len(t, got.Instances, 1)
	assert.Len(t, got.Instances[0], 4)
	assert.Len(t, got.Instances[0][0], 4)
	assert.Len(t, got.Instances[0][0][0], 3)
}

func TestRemoteClassifierErrors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error": "model not loaded"}`},
		{"bad request", http.StatusBadRequest, `not json`},
		{"error field", http.StatusOK, `{"error": "bad input"}`},
		{"no predictions", http.StatusOK, `{"predictions": []}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewRemoteClassifier(RemoteConfig{BaseURL: srv.URL})
			_, err := c.Predict(context.Background(), domain.NewImageTensor(2))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInference))
		})
	}
}

func TestRemoteClassifierUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewRemoteClassifier(RemoteConfig{BaseURL: url})
	_, err := c.Predict(context.Background(), domain.NewImageTensor(2))
	assert.True(t, errors.Is(err, domain.ErrInference))
}
