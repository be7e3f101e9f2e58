// Package uxerror translates raw errors into user-friendly messages with
// recovery hints for the TUI.
package uxerror

import (
	"errors"
	"fmt"
	"strings"

	"textgen/internal/adapter/tui/theme"
	"textgen/internal/domain"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading, e.g. "Service Unreachable"
	Message string   // one-liner explanation
	Hints   []string // actionable recovery suggestions
	Raw     string   // original error text (for debug)
}

// Render formats the FriendlyError for display in the TUI message list.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  Suggestions:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
		}
	}
	return sb.String()
}

type kindCopy struct {
	title string
	hints []string
}

var kinds = map[domain.ErrorKind]kindCopy{
	domain.KindCancelled: {
		title: "Generation Cancelled",
		hints: []string{"Press Enter to try again"},
	},
	domain.KindServerRejected: {
		title: "Request Rejected",
		hints: []string{"Check /settings: length must be 50-500, temperature 0.1-2.0", "Try a different prefix"},
	},
	domain.KindUnreachable: {
		title: "Service Unreachable",
		hints: []string{"Check your internet connection", "Verify generator.base_url in config or pass --url", "Run 'textgen health' to probe the service"},
	},
	domain.KindMalformed: {
		title: "Unexpected Response",
		hints: []string{"The service may be restarting; try again shortly", "Run with --verbose and inspect textgen.log"},
	},
	domain.KindEmptyResult: {
		title: "Nothing Generated",
		hints: []string{"Try a longer prefix", "Raise the temperature with /temp"},
	},
}

// Describe wraps the controller's error notice with a title and hints for its
// kind. The message is kept as produced by the controller.
func Describe(info domain.ErrorInfo) FriendlyError {
	c, ok := kinds[info.Kind]
	if !ok {
		c = kinds[domain.KindUnreachable]
	}
	return FriendlyError{
		Title:   c.title,
		Message: info.Message,
		Hints:   c.hints,
		Raw:     string(info.Kind),
	}
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

var patterns = []errorPattern{
	// Domain sentinel errors (checked first so errors.Is works through wrapping).
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrExport) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Export Failed",
				Message: "The transcript could not be written.",
				Hints:   []string{"Check that the target directory exists and is writable", "Pass an explicit path: /export md ./chat.md"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrInvalidInput) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Invalid Input",
				Message: err.Error(),
				Hints:   []string{"Type /help for command usage"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrHealthCheck) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Health Check Failed",
				Message: "The generation service did not answer its health probe.",
				Hints:   []string{"Verify generator.base_url in config", "The hosted service may be waking up; retry in a few seconds"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrConfigLoad) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Configuration Error",
				Message: err.Error(),
				Hints:   []string{"Check ~/.textgen/config.yaml", "Unset TEXTGEN_* environment variables to fall back to defaults"},
				Raw:     err.Error(),
			}
		},
	},

	// Network / connectivity patterns (string matching for external errors).
	{
		match:   containsAny("connection refused", "dial tcp", "no such host"),
		produce: constantError("Connection Failed", "Could not reach the remote service.", []string{"Check your internet connection", "Verify the service URL in config"}),
	},
	{
		match:   containsAny("deadline exceeded", "timeout", "context deadline"),
		produce: constantError("Request Timed Out", "The request took too long to complete.", []string{"Check your network connection", "Increase generator.resp_timeout in config"}),
	},
	{
		match:   containsAny("permission denied", "read-only file system"),
		produce: constantError("Permission Denied", "The file could not be written.", []string{"Choose a different export directory"}),
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Raw: "nil"}
	}

	for _, p := range patterns {
		if p.match(err) {
			return p.produce(err)
		}
	}

	// Fallback for unrecognized errors.
	return FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try again", "Run with --verbose for more details"},
		Raw:     err.Error(),
	}
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// constantError returns a produce func that always returns the same FriendlyError.
func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{
			Title:   title,
			Message: message,
			Hints:   hints,
			Raw:     err.Error(),
		}
	}
}
