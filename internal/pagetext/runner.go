package pagetext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExitError reports a command that ran and exited with a non-zero status.
type ExitError struct {
	Name string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// pdftotextExit holds the documented pdftotext exit statuses.
var pdftotextExit = map[int]string{
	1:  "error opening the PDF file",
	2:  "error opening the output file",
	3:  "PDF permissions forbid text extraction",
	99: "other error, usually a page outside the document",
}

// exitReason describes a pdftotext failure and reports whether reading another page of
// the same file could succeed. Errors without an exit status get no description.
func exitReason(err error) (reason string, otherPage bool) {
	var ee *ExitError
	if !errors.As(err, &ee) {
		return "", true
	}
	reason, ok := pdftotextExit[ee.Code]
	if !ok {
		reason = fmt.Sprintf("unexpected exit status %d", ee.Code)
	}
	return reason, ee.Code != 1 && ee.Code != 3
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		err = &ExitError{Name: name, Code: exitErr.ExitCode(), Err: err}
	}

	if err != nil {
		reason, _ := exitReason(err)
		r.logger.Warn("pdftotext failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"reason", reason,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		r.logger.Debug("pdftotext ok",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"text_bytes", out.Len(),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
