// Package classifier adapts pretrained image classifiers to a single contract:
// a [1, H, W, 3] float32 tensor in, a probability vector over the label set out.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/producelens/internal/domain"
)

// Classifier runs one forward pass. Implementations must be safe for
// concurrent use or synchronize internally.
type Classifier interface {
	Predict(ctx context.Context, input *domain.Tensor) ([]float32, error)
	// OutputSize returns the number of classes the model emits, or 0 if unknown.
	OutputSize() int
	Close() error
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, input *domain.Tensor) ([]float32, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, input *domain.Tensor) ([]float32, error) {
	return f(ctx, input)
}

// OutputSize is unknown for a Func.
func (f Func) OutputSize() int { return 0 }

// Close is a no-op.
func (f Func) Close() error { return nil }

// Engine names a Classifier implementation.
type Engine string

const (
	EngineONNX   Engine = "onnx"
	EngineRemote Engine = "remote"
)

// Config selects and configures an engine.
type Config struct {
	Engine Engine
	ONNX   ONNXConfig
	Remote RemoteConfig
}

// New creates the configured engine. numClasses is the size of the label list.
func New(cfg Config, numClasses int) (Classifier, error) {
	switch cfg.Engine {
	case EngineONNX, "":
		onnxCfg := cfg.ONNX
		onnxCfg.NumClasses = numClasses
		return NewONNXClassifier(onnxCfg)
	case EngineRemote:
		return NewRemoteClassifier(cfg.Remote), nil
	default:
		return nil, fmt.Errorf("unknown classifier engine %q", cfg.Engine)
	}
}

// Argmax returns the index and value of the largest probability.
// Ties resolve to the lowest index.
func Argmax(probs []float32) (int, float32, error) {
	if len(probs) == 0 {
		return 0, 0, errors.New("empty probability vector")
	}
	idx, best := 0, probs[0]
	for i := 1; i < len(probs); i++ {
		if probs[i] > best {
			idx, best = i, probs[i]
		}
	}
	return idx, best, nil
}

func inferenceErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInference, fmt.Sprintf(format, args...))
}
