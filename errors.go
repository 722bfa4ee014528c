package headinject

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration failures.
// Use errors.Is() to check for these error types and ErrorCode to get the
// stable numeric code exposed to hosts.
var (
	// ErrParse indicates the configuration document could not be decoded.
	ErrParse = errors.New("parse failed")

	// ErrUnsupportedMajorVersion indicates the requested SDK major version is unknown.
	ErrUnsupportedMajorVersion = errors.New("unsupported major version")

	// ErrUnsupportedSite indicates the site is not a Datadog site.
	ErrUnsupportedSite = errors.New("unsupported site")

	// ErrOutOfRangeRate indicates a sample rate outside 0..100.
	ErrOutOfRangeRate = errors.New("rate out of range")

	// ErrEmptyMandatoryConf indicates a required setting is missing or empty.
	ErrEmptyMandatoryConf = errors.New("empty mandatory configuration")
)

// Sentinel errors for session contract violations. These are never returned;
// they are carried by the *ContractError a Session panics with.
var (
	// ErrSessionEnded indicates Write or End after End.
	ErrSessionEnded = errors.New("session already ended")

	// ErrSessionReleased indicates a call on a released session.
	ErrSessionReleased = errors.New("session released")

	// ErrConcurrentCall indicates overlapping calls on the same session.
	ErrConcurrentCall = errors.New("concurrent call on session")

	// ErrStaleResult indicates a result read after its session moved on.
	ErrStaleResult = errors.New("stale result")
)

// Error codes. 0 means success.
const (
	CodeOK                      uint8 = 0
	CodeParse                   uint8 = 1
	CodeUnsupportedMajorVersion uint8 = 2
	CodeUnsupportedSite         uint8 = 3
	CodeOutOfRangeRate          uint8 = 4
	CodeEmptyMandatoryConf      uint8 = 5
)

// ConfigError represents a configuration or snippet generation failure.
// It wraps a sentinel error with the offending key and value.
type ConfigError struct {
	Err   error  // Underlying sentinel error (ErrParse, ErrUnsupportedSite, etc.)
	Key   string // Setting that failed, if any
	Value any    // Offending value, if any
	Cause error  // Original error from a codec, if any
}

func (e *ConfigError) Error() string {
	switch {
	case errors.Is(e.Err, ErrParse):
		if e.Cause != nil {
			return fmt.Sprintf("JSON error: %v", e.Cause)
		}
		return "JSON error: " + e.Err.Error()
	case errors.Is(e.Err, ErrUnsupportedMajorVersion):
		return fmt.Sprintf("Validation error: The major version '%v' is not supported. Supported RUM SDK versions: [5, 6]", e.Value)
	case errors.Is(e.Err, ErrUnsupportedSite):
		return fmt.Sprintf("Validation error: The site '%v' is not a valid Datadog site. Examples of valid Datadog sites: 'datadoghq.com', 'datadoghq.eu', 'ddog-gov.com'.", e.Value)
	case errors.Is(e.Err, ErrOutOfRangeRate):
		return fmt.Sprintf("Validation error: The provided %s is invalid. It must be between 0.0 and 100.0. However, the received value was '%v'.", e.Key, e.Value)
	case errors.Is(e.Err, ErrEmptyMandatoryConf):
		return fmt.Sprintf("Validation error: Mandatory field '%s' is empty.", e.Key)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Code returns the stable numeric code of the error.
func (e *ConfigError) Code() uint8 {
	switch {
	case errors.Is(e.Err, ErrParse):
		return CodeParse
	case errors.Is(e.Err, ErrUnsupportedMajorVersion):
		return CodeUnsupportedMajorVersion
	case errors.Is(e.Err, ErrUnsupportedSite):
		return CodeUnsupportedSite
	case errors.Is(e.Err, ErrOutOfRangeRate):
		return CodeOutOfRangeRate
	case errors.Is(e.Err, ErrEmptyMandatoryConf):
		return CodeEmptyMandatoryConf
	}
	return CodeParse
}

// ErrorCode returns the numeric code for err: CodeOK for nil, the ConfigError
// code when err wraps one, and CodeParse otherwise.
func ErrorCode(err error) uint8 {
	if err == nil {
		return CodeOK
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return CodeParse
}

// ContractError describes a misuse of a Session. Sessions panic with it
// because continuing would put wrong bytes on the wire.
type ContractError struct {
	Err error  // Underlying sentinel error (ErrSessionEnded, etc.)
	Op  string // Operation that detected the violation
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("headinject: %s: %s", e.Op, e.Err.Error())
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// newParseError creates a ConfigError for decoding failures.
func newParseError(key string, cause error) error {
	return &ConfigError{
		Err:   ErrParse,
		Key:   key,
		Cause: cause,
	}
}

// newValidationError creates a ConfigError for a rejected setting.
func newValidationError(sentinel error, key string, value any) error {
	return &ConfigError{
		Err:   sentinel,
		Key:   key,
		Value: value,
	}
}

// violation panics with a ContractError.
func violation(sentinel error, op string) {
	panic(&ContractError{Err: sentinel, Op: op})
}
