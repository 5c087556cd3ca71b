package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned when uploaded bytes are not a supported image encoding.
	ErrDecode = errors.New("unsupported or corrupt image")

	// ErrInference is returned when the classifier call fails.
	ErrInference = errors.New("inference failed")

	// ErrLabelOutOfRange is returned when a class index falls outside the label list.
	ErrLabelOutOfRange = errors.New("class index out of range")
)

// InitializationError reports a reference artifact that could not be loaded.
// The process must not start serving when one is returned.
type InitializationError struct {
	Source string
	Err    error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Source, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// PredictionStage names the pipeline step a PredictionError came from.
type PredictionStage string

const (
	StagePreprocess PredictionStage = "preprocess"
	StageInference  PredictionStage = "inference"
	StageResolve    PredictionStage = "resolve"
)

// PredictionError wraps any failure of a single analyze call.
type PredictionError struct {
	Stage PredictionStage
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed at %s: %v", e.Stage, e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
