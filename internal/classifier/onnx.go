package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/timmy/producelens/internal/domain"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig configures the ONNX Runtime engine.
type ONNXConfig struct {
	ModelPath      string
	LibraryPath    string // onnxruntime shared library; empty uses the platform default
	InputName      string // empty picks the model's only input
	OutputName     string // empty picks the model's only output
	IntraOpThreads int
	NumClasses     int // used when the model's class dimension is dynamic
}

var (
	envMu    sync.Mutex
	envUsers int
)

// ONNXClassifier runs an exported model through ONNX Runtime. Every call
// allocates its own tensors, so concurrent Predict calls are safe.
type ONNXClassifier struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	numClasses int
}

// NewONNXClassifier loads the model and creates a session.
func NewONNXClassifier(cfg ONNXConfig) (*ONNXClassifier, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("onnx model path is required")
	}
	if err := acquireEnvironment(cfg.LibraryPath); err != nil {
		return nil, err
	}

	c, err := newONNXSession(cfg)
	if err != nil {
		releaseEnvironment()
		return nil, err
	}
	return c, nil
}

func newONNXSession(cfg ONNXConfig) (*ONNXClassifier, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect model %s: %w", cfg.ModelPath, err)
	}

	inputName, err := pickName("input", cfg.InputName, inputs)
	if err != nil {
		return nil, err
	}
	outputName, err := pickName("output", cfg.OutputName, outputs)
	if err != nil {
		return nil, err
	}

	numClasses := cfg.NumClasses
	for _, o := range outputs {
		if o.Name == outputName && len(o.Dimensions) > 0 {
			if last := o.Dimensions[len(o.Dimensions)-1]; last > 0 {
				numClasses = int(last)
			}
		}
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("cannot determine class count of output %q", outputName)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer opts.Destroy()
	if cfg.IntraOpThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("failed to set intra-op threads: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{inputName}, []string{outputName}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXClassifier{
		session:    session,
		inputName:  inputName,
		outputName: outputName,
		numClasses: numClasses,
	}, nil
}

func pickName(kind, configured string, infos []ort.InputOutputInfo) (string, error) {
	if configured != "" {
		for _, info := range infos {
			if info.Name == configured {
				return configured, nil
			}
		}
		return "", fmt.Errorf("model has no %s named %q", kind, configured)
	}
	if len(infos) != 1 {
		return "", fmt.Errorf("model has %d %ss, configure which one to use", len(infos), kind)
	}
	return infos[0].Name, nil
}

// Predict runs one forward pass.
func (c *ONNXClassifier) Predict(_ context.Context, input *domain.Tensor) ([]float32, error) {
	in, err := ort.NewTensor(ort.NewShape(input.Shape...), input.Data)
	if err != nil {
		return nil, inferenceErr("create input tensor: %v", err)
	}
	defer in.Destroy()

	batch := int64(1)
	if len(input.Shape) > 0 {
		batch = input.Shape[0]
	}
	out, err := ort.NewEmptyTensor[float32](ort.NewShape(batch, int64(c.numClasses)))
	if err != nil {
		return nil, inferenceErr("create output tensor: %v", err)
	}
	defer out.Destroy()

	if err := c.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return nil, inferenceErr("%v", err)
	}

	probs := make([]float32, c.numClasses)
	copy(probs, out.GetData())
	return probs, nil
}

// OutputSize returns the model's class count.
func (c *ONNXClassifier) OutputSize() int {
	return c.numClasses
}

// Close releases the session and, for the last user, the runtime environment.
func (c *ONNXClassifier) Close() error {
	if c.session == nil {
		return nil
	}
	err := c.session.Destroy()
	c.session = nil
	releaseEnvironment()
	return err
}

func acquireEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envUsers == 0 && !ort.IsInitialized() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}
	envUsers++
	return nil
}

func releaseEnvironment() {
	envMu.Lock()
	defer envMu.Unlock()

	envUsers--
	if envUsers == 0 && ort.IsInitialized() {
		_ = ort.DestroyEnvironment()
	}
}
