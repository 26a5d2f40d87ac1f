// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Tag operations
	OpTagRead  Op = "read tags"
	OpTagWrite Op = "write tags"
	OpTagSet   Op = "set tag field"

	// Picture operations
	OpPictureLoad Op = "load picture"
	OpFolderArt   Op = "find folder art"

	// File operations
	OpFileAdd    Op = "add file"
	OpFileRename Op = "rename file"
	OpFileSave   Op = "save file"

	// Folder operations
	OpFolderAdd    Op = "add folder"
	OpFolderRename Op = "rename folder"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Error is a failed operation, printed the way FormatWith prints it.
type Error struct {
	Op      Op
	Context string
	Err     error
}

func (e *Error) Error() string {
	return FormatWith(e.Op, e.Context, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *Error, or nil when err is nil.
func Wrap(op Op, context string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Context: context, Err: err}
}
