package adapter

import "fmt"

// ConfigurationError reports a pipeline configuration that cannot serve the
// supplied sample. It is raised before any image work happens.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// InternalConsistencyError reports that the augmentation engine broke a
// contract the adapter relies on, such as changing the number of keypoints.
// Retrying with the same random state reproduces it.
type InternalConsistencyError struct {
	Reason string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency error: %s", e.Reason)
}

// SampleError reports a malformed input sample, for example misaligned
// instance fields.
type SampleError struct {
	Err error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("invalid sample: %v", e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }
