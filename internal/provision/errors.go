package provision

import (
	"errors"
	"fmt"
)

// wrongPlatformError signals a layer requested on a host OS that cannot
// run it. This is a configuration error, never retried.
type wrongPlatformError struct {
	layer Layer
	os    string
}

func (e wrongPlatformError) Error() string {
	return fmt.Sprintf("layer %s requires linux, host is %s", e.layer, e.os)
}

// ErrWrongPlatform constructs a wrongPlatformError.
func ErrWrongPlatform(layer Layer, os string) error {
	return wrongPlatformError{layer: layer, os: os}
}

// IsWrongPlatform reports whether err indicates a platform/layer mismatch.
func IsWrongPlatform(err error) bool {
	var e wrongPlatformError
	return errors.As(err, &e)
}

// invalidSelectionError signals a selected-layers list that violates the
// ordering invariants.
type invalidSelectionError struct{ reason string }

func (e invalidSelectionError) Error() string { return "invalid layer selection: " + e.reason }

// ErrInvalidSelection constructs an invalidSelectionError.
func ErrInvalidSelection(reason string) error { return invalidSelectionError{reason: reason} }

// IsInvalidSelection reports whether err indicates a rejected layer list.
func IsInvalidSelection(err error) bool {
	var e invalidSelectionError
	return errors.As(err, &e)
}

// missingToolError signals a required executable absent from PATH.
type missingToolError struct{ tool string }

func (e missingToolError) Error() string { return "required tool not found on PATH: " + e.tool }

// ErrMissingTool constructs a missingToolError.
func ErrMissingTool(tool string) error { return missingToolError{tool: tool} }

// IsMissingTool reports whether err indicates a missing host tool.
func IsMissingTool(err error) bool {
	var e missingToolError
	return errors.As(err, &e)
}

// versionMismatchError signals a freshly created environment whose
// interpreter does not match the pinned version. Fatal: resolution under a
// substituted interpreter must never proceed.
type versionMismatchError struct{ want, got string }

func (e versionMismatchError) Error() string {
	return fmt.Sprintf("interpreter version mismatch: expected %s, detected %s", e.want, e.got)
}

// ErrVersionMismatch constructs a versionMismatchError.
func ErrVersionMismatch(want, got string) error { return versionMismatchError{want: want, got: got} }

// IsVersionMismatch reports whether err indicates a failed interpreter
// verification.
func IsVersionMismatch(err error) bool {
	var e versionMismatchError
	return errors.As(err, &e)
}

// layerFailedError tags an install failure with the layer it happened in.
type layerFailedError struct {
	layer Layer
	err   error
}

func (e layerFailedError) Error() string {
	return fmt.Sprintf("layer %s install failed: %v", e.layer, e.err)
}

func (e layerFailedError) Unwrap() error { return e.err }

// ErrLayerFailed wraps err with the failing layer.
func ErrLayerFailed(layer Layer, err error) error { return layerFailedError{layer: layer, err: err} }

// FailedLayer returns the layer a provisioning error failed in, if any.
func FailedLayer(err error) (Layer, bool) {
	var e layerFailedError
	if errors.As(err, &e) {
		return e.layer, true
	}
	return "", false
}

// missingArtifactError signals an expected pretrained-model artifact absent
// from disk. The operator places artifacts separately; this step cannot
// recover on its own.
type missingArtifactError struct{ path string }

func (e missingArtifactError) Error() string {
	return "expected artifact not found: " + e.path + " (fetch pretrained models first)"
}

// ErrMissingArtifact constructs a missingArtifactError.
func ErrMissingArtifact(path string) error { return missingArtifactError{path: path} }

// IsMissingArtifact reports whether err indicates an absent model artifact.
func IsMissingArtifact(err error) bool {
	var e missingArtifactError
	return errors.As(err, &e)
}
