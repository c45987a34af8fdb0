// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package installer

import (
	"context"
	"errors"
	"fmt"

	"github.com/nomfodm/ia/internal/prompt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Kind categorizes a fatal run outcome.
type Kind int

const (
	// UnclassifiedFault is any failure without a more specific kind.
	UnclassifiedFault Kind = iota
	// UnsupportedPlatform means the OS is neither windows nor linux.
	UnsupportedPlatform
	// MessagesUnavailable means the localized message table could not be fetched.
	MessagesUnavailable
	// CatalogUnavailable means the catalog could not be fetched or is invalid.
	CatalogUnavailable
	// InstallFailed means the setup command could not run or exited non-zero.
	InstallFailed
	// ConfigurationFailed means the configuration script could not run or exited non-zero.
	ConfigurationFailed
	// UserInterrupted means the user cancelled the run.
	UserInterrupted
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case UnsupportedPlatform:
		return "unsupported platform"
	case MessagesUnavailable:
		return "messages unavailable"
	case CatalogUnavailable:
		return "catalog unavailable"
	case InstallFailed:
		return "install failed"
	case ConfigurationFailed:
		return "configuration failed"
	case UserInterrupted:
		return "interrupted"
	default:
		return "unclassified fault"
	}
}

// Error is the single error type returned by Installer.Run.
type Error struct {
	Kind Kind
	Err  error

	// args are substituted into the kind's message template.
	args []any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnsupportedPlatform = &Error{Kind: UnsupportedPlatform}
	ErrMessagesUnavailable = &Error{Kind: MessagesUnavailable}
	ErrCatalogUnavailable  = &Error{Kind: CatalogUnavailable}
	ErrInstallFailed       = &Error{Kind: InstallFailed}
	ErrConfigurationFailed = &Error{Kind: ConfigurationFailed}
	ErrUserInterrupted     = &Error{Kind: UserInterrupted}
	ErrUnclassifiedFault   = &Error{Kind: UnclassifiedFault}
)

func newError(kind Kind, err error, args ...any) *Error {
	return &Error{Kind: kind, Err: err, args: args}
}

// classify converts any error that reached the top of a run into an *Error.
func classify(err error) *Error {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, prompt.ErrAborted),
		errors.Is(err, context.Canceled):
		return newError(UserInterrupted, err)
	default:
		return newError(UnclassifiedFault, err, err)
	}
}

// =============================================================================
// EXIT CODES
// =============================================================================

// Exit codes used when strict exit codes are enabled.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// ExitCode maps the result of Run to a process exit status. Without strict
// mode every path exits 0, which existing wrappers of the assistant expect.
func ExitCode(err error, strict bool) int {
	if err == nil || !strict {
		return ExitOK
	}
	if errors.Is(err, ErrUserInterrupted) {
		return ExitInterrupted
	}
	return ExitFailure
}
