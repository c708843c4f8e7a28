// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

var (
	colorsEnabled     bool
	colorsEnabledOnce sync.Once
)

// ColorsEnabled returns true if colored output should be used.
// Respects NO_COLOR (https://no-color.org/), then FORCE_COLOR, then
// whether stdout is a terminal.
func ColorsEnabled() bool {
	colorsEnabledOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" {
			colorsEnabled = false
			return
		}
		if os.Getenv("FORCE_COLOR") != "" {
			colorsEnabled = true
			return
		}
		colorsEnabled = IsStdoutTTY()
	})
	return colorsEnabled
}

// GetColorProfile returns Ascii when colors are disabled, otherwise the
// profile termenv detects.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// =============================================================================
// INTERACTIVE INPUT
// =============================================================================

// TTYRequiredError is returned when an operation requires a TTY but none is available.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation != "" {
		return "stdin is not a terminal; cannot " + e.Operation + " interactively"
	}
	return "stdin is not a terminal; interactive input not available"
}

// Prompter reads answers from the user. On a terminal passwords are read
// without echo; otherwise lines are read from In, which lets scripts pipe
// credentials in.
type Prompter struct {
	In  io.Reader
	Out io.Writer

	// Terminal reports whether In is an interactive terminal. Nil means
	// stdin is checked.
	Terminal func() bool

	once   sync.Once
	reader *bufio.Reader
}

func (p *Prompter) interactive() bool {
	if p.Terminal != nil {
		return p.Terminal()
	}
	return p.In == os.Stdin && IsTTY()
}

func (p *Prompter) lines() *bufio.Reader {
	p.once.Do(func() { p.reader = bufio.NewReader(p.In) })
	return p.reader
}

// Line prompts for a line of text.
func (p *Prompter) Line(prompt string) (string, error) {
	if p.interactive() {
		fmt.Fprint(p.Out, prompt)
	}
	line, err := p.lines().ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Password prompts for a secret without echoing it.
func (p *Prompter) Password(prompt string) (string, error) {
	if !p.interactive() {
		return p.Line(prompt)
	}
	f, ok := p.In.(*os.File)
	if !ok {
		return "", &TTYRequiredError{Operation: "read a password"}
	}
	fmt.Fprint(p.Out, prompt)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}
