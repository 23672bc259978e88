package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Execute parses args and runs the selected command, writing all output to
// outW. Usage problems come back as ExitError with code 2 and failed work as
// ExitError with code 1.
func Execute(ctx context.Context, outW io.Writer, args []string) error {
	slog.Debug("CLI parser started.")
	root := newRootCmd(outW)
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(outW)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Anything cobra rejects on its own (unknown command, arg count, required
	// flags) is a usage error.
	return &ExitError{Code: 2, Message: err.Error()}
}
