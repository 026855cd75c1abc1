// Package console prints the user-facing result lines for cicd commands.
// Each line is tagged with an emoji so workflow logs can be scanned quickly.
package console

import (
	"fmt"
	"io"
	"os"
)

// Emoji tags for result lines.
const (
	PartyPopper = "\U0001f389"
	CheckMark   = "✔"
	CrossMark   = "❌"
	CurlyLoop   = "➰"
)

// Out and ErrOut are swappable for tests.
var (
	Out    io.Writer = os.Stdout
	ErrOut io.Writer = os.Stderr
)

// Success prints a party-popper line for a completed operation.
func Success(format string, args ...any) {
	fmt.Fprintf(Out, PartyPopper+" "+format+"\n", args...)
}

// OK prints a check-mark line for a no-op or up-to-date result.
func OK(format string, args ...any) {
	fmt.Fprintf(Out, CheckMark+" "+format+"\n", args...)
}

// Info prints an untagged informational line.
func Info(format string, args ...any) {
	fmt.Fprintf(Out, format+"\n", args...)
}

// Error prints a cross-mark line to stderr.
func Error(format string, args ...any) {
	fmt.Fprintf(ErrOut, CrossMark+" Error: "+format+"\n", args...)
}

// Pending prints a curly-loop line for pre-commit "changes pending" results.
func Pending(format string, args ...any) {
	fmt.Fprintf(Out, CurlyLoop+" "+format+"\n", args...)
}
