package cli

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/idelchi/largest/internal/config"
	"github.com/idelchi/largest/internal/scan"
)

// ExitCode is the process exit status.
type ExitCode int

// Exit codes, one per failure class.
const (
	Success ExitCode = iota
	MissingArguments
	RootNotExist
	RootNotDirectory
	RootEmpty
	UnknownOption
	MissingOptionValue
	InvalidOptionValue
	FileOpenFailure
	ScanFailure
)

// ExitError attaches an exit code to an error.
type ExitError struct {
	Code ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func withCode(code ExitCode, err error) error {
	return &ExitError{Code: code, Err: err}
}

// CodeOf maps an error returned by Run to its exit code.
func CodeOf(err error) ExitCode {
	if err == nil {
		return Success
	}

	var (
		exitErr    *ExitError
		notExist   *pflag.NotExistError
		valueReq   *pflag.ValueRequiredError
		invalidVal *pflag.InvalidValueError
	)

	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &notExist):
		return UnknownOption
	case errors.As(err, &valueReq):
		return MissingOptionValue
	case errors.As(err, &invalidVal):
		return InvalidOptionValue
	case errors.Is(err, scan.ErrRootNotExist):
		return RootNotExist
	case errors.Is(err, scan.ErrRootNotDir):
		return RootNotDirectory
	case errors.Is(err, scan.ErrRootEmpty):
		return RootEmpty
	case errors.Is(err, config.ErrInvalidNumber),
		errors.Is(err, config.ErrInvalidSizeRange),
		errors.Is(err, config.ErrInvalidDepth),
		errors.Is(err, config.ErrInvalidFormat):
		return InvalidOptionValue
	default:
		return ScanFailure
	}
}
