package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"
)

var ErrUserInitiatedExit = errors.New("user exit")

var quitters = []string{"q", "quit"}

type line struct {
	text string
	err  error
}

// LineReader reads user input line by line in the background, so that a read
// may be abandoned when the context is cancelled.
type LineReader struct {
	lines chan line
}

// NewLineReader starts reading r. Reading stops at the first error, io.EOF included.
func NewLineReader(r io.Reader) *LineReader {
	lr := &LineReader{lines: make(chan line)}
	go func() {
		defer close(lr.lines)
		reader := bufio.NewReader(r)
		for {
			s, err := reader.ReadString('\n')
			if err != nil {
				// A last line without newline still counts
				if s != "" && errors.Is(err, io.EOF) {
					lr.lines <- line{text: s}
				}
				lr.lines <- line{err: err}
				return
			}
			lr.lines <- line{text: s}
		}
	}()
	return lr
}

// ReadUserInput returns the next line, trimmed. 'q' and 'quit' as well as a
// cancelled context return ErrUserInitiatedExit. End of input returns io.EOF.
func (lr *LineReader) ReadUserInput(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ErrUserInitiatedExit
	case l, open := <-lr.lines:
		if !open {
			return "", io.EOF
		}
		if l.err != nil {
			if errors.Is(l.err, io.EOF) {
				return "", io.EOF
			}
			return "", fmt.Errorf("failed to read user input: %w", l.err)
		}
		trimmedInput := strings.TrimSpace(l.text)
		if slices.Contains(quitters, trimmedInput) {
			return "", ErrUserInitiatedExit
		}
		return trimmedInput, nil
	}
}

// ReadSecret prints prompt and reads a line from stdin without echoing it,
// when stdin is a terminal. Otherwise the line is read as is.
func ReadSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		s, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return strings.TrimSpace(s), nil
	}
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
