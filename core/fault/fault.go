// Package fault implements the error taxonomy for the inference core.
// Errors are classified into kinds with defined propagation behavior:
// every kind is detected eagerly at the boundary of the component that
// first observes the malformed input and propagated to the caller
// without coercion or retry.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error raised by the inference core.
type Kind int

const (
	// KindDomain indicates a malformed probability object: negative
	// entries, a non-normalizable zero-sum slice, or a posterior made
	// undefined by zero-likelihood evidence.
	KindDomain Kind = iota

	// KindConfig indicates invalid caller-supplied configuration: an
	// unrecognized sampling mode, a planning horizon below one, an
	// empty policy set, or tensor shapes inconsistent with the
	// declared state and observation sizes.
	KindConfig
)

var kindNames = map[Kind]string{
	KindDomain: "domain",
	KindConfig: "config",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// DomainError reports a malformed probability table or an undefined
// distribution. Op names the operation that detected the problem.
type DomainError struct {
	Op     string
	Detail string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

// Kind returns KindDomain.
func (e *DomainError) Kind() Kind { return KindDomain }

// ConfigError reports invalid configuration supplied by the caller.
type ConfigError struct {
	Op     string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

// Kind returns KindConfig.
func (e *ConfigError) Kind() Kind { return KindConfig }

// Domainf constructs a DomainError with a formatted detail message.
func Domainf(op, format string, args ...any) error {
	return &DomainError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Configf constructs a ConfigError with a formatted detail message.
func Configf(op, format string, args ...any) error {
	return &ConfigError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// IsDomain reports whether any error in err's chain is a DomainError.
func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// IsConfig reports whether any error in err's chain is a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
