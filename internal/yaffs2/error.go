package yaffs2

import "golang.org/x/xerrors"

// ErrorKind classifies a failure so a single top-level handler can decide
// exit-vs-warn without inspecting error strings.
type ErrorKind int

const (
	KindNotYaffs2 ErrorKind = iota
	KindUndetectableLayout
	KindTruncatedImage
	KindBrokenImage
	KindMalformedRecord
	KindTooManyWarnings
	KindInvalidReference
	KindOutputError
	KindDeviceNodePermission
	KindMetadataBestEffort
	KindUsageError
	KindBadDestination
)

// Fatal reports whether errors of this kind abort the run. Only
// DeviceNodePermission and MetadataBestEffort are warnings.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindDeviceNodePermission, KindMetadataBestEffort:
		return false
	default:
		return true
	}
}

// Error is the one sum type that propagates from the decoder, object table
// and extractor up to the orchestrator and main. It replaces the original
// tool's early-process-exit style with a single typed value.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: xerrors.Errorf(format, args...).Error()}
}

func wrapError(kind ErrorKind, cause error, format string, args ...interface{}) *Error {
	err := xerrors.Errorf(format+": %w", append(append([]interface{}{}, args...), cause)...)
	return &Error{Kind: kind, Message: err.Error(), Cause: cause}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }
