package config

import (
	"fmt"
	"os"
	"time"
)

// ClassifierConfig selects and configures the inference engine.
type ClassifierConfig struct {
	Engine         string       `mapstructure:"engine"`           // "onnx" or "remote"
	ImageSize      int          `mapstructure:"image_size"`       // Square input edge in pixels
	MaxImagePixels int64        `mapstructure:"max_image_pixels"` // Largest accepted width*height of an upload
	ONNX           ONNXConfig   `mapstructure:"onnx"`
	Remote         RemoteConfig `mapstructure:"remote"`
}

type ONNXConfig struct {
	ModelPath      string `mapstructure:"model_path"`
	LibraryPath    string `mapstructure:"library_path"` // onnxruntime shared library; empty uses the platform default
	InputName      string `mapstructure:"input_name"`
	OutputName     string `mapstructure:"output_name"`
	IntraOpThreads int    `mapstructure:"intra_op_threads"`
}

// RemoteConfig points at a TensorFlow-Serving compatible REST endpoint.
type RemoteConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	ModelName string        `mapstructure:"model_name"`
	APIKey    string        `mapstructure:"api_key"`     // can be set directly or via env var
	APIKeyEnv string        `mapstructure:"api_key_env"` // Environment variable name for API key
	Timeout   time.Duration `mapstructure:"timeout"`     // 0 disables the client timeout
}

// ResolveEnvVars loads APIKey from APIKeyEnv when no key is set directly.
func (c *RemoteConfig) ResolveEnvVars() {
	if c.APIKeyEnv != "" && c.APIKey == "" {
		if val := os.Getenv(c.APIKeyEnv); val != "" {
			c.APIKey = val
		}
	}
}

// Validate checks that the selected engine has what it needs.
func (c *ClassifierConfig) Validate() error {
	if c.ImageSize <= 0 {
		return fmt.Errorf("classifier: image_size must be positive")
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("classifier: max_image_pixels must be positive")
	}

	switch c.Engine {
	case "onnx":
		if c.ONNX.ModelPath == "" {
			return fmt.Errorf("classifier: onnx.model_path is required")
		}
		if c.ONNX.IntraOpThreads < 0 {
			return fmt.Errorf("classifier: onnx.intra_op_threads must not be negative")
		}
	case "remote":
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("classifier: remote.base_url is required")
		}
		if c.Remote.Timeout < 0 {
			return fmt.Errorf("classifier: remote.timeout must not be negative")
		}
	default:
		return fmt.Errorf("classifier: unknown engine %q", c.Engine)
	}
	return nil
}
