package git

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/bashhack/gitautocommit/internal/errors"
)

// MessageProvider supplies the message of the squash commit. It blocks until
// a non-empty message is available.
type MessageProvider interface {
	Message(ctx context.Context) (string, error)
}

// FixedMessage always returns itself
type FixedMessage string

// Message returns the fixed message, or ErrEmptyCommitMessage if it is blank
func (m FixedMessage) Message(context.Context) (string, error) {
	msg := strings.TrimSpace(string(m))
	if msg == "" {
		return "", errors.ErrEmptyCommitMessage
	}
	return msg, nil
}

// LineReader prompts on Writer and reads one line at a time from Reader
// until a non-blank one arrives
type LineReader struct {
	Reader io.Reader
	Writer io.Writer
}

// Message keeps prompting until a non-blank line is read. End of input
// before that returns ErrEmptyCommitMessage.
func (l *LineReader) Message(ctx context.Context) (string, error) {
	scanner := bufio.NewScanner(l.Reader)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		_, _ = fmt.Fprint(l.Writer, "Commit message: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", errors.Wrap(err, "failed to read commit message")
			}
			return "", errors.Wrap(errors.ErrEmptyCommitMessage, "input closed")
		}

		if msg := strings.TrimSpace(scanner.Text()); msg != "" {
			return msg, nil
		}
	}
}

// PromptMessage asks for the message with an interactive input field
type PromptMessage struct{}

// Message runs the input until a non-blank message is confirmed
func (PromptMessage) Message(ctx context.Context) (string, error) {
	var msg string
	input := huh.NewInput().
		Title("Commit message").
		Description("Summary of the work captured by the auto commits").
		Value(&msg).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.ErrEmptyCommitMessage
			}
			return nil
		})

	if err := huh.NewForm(huh.NewGroup(input)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", errors.Wrap(errors.ErrEmptyCommitMessage, "prompt aborted")
		}
		return "", errors.Wrap(err, "commit message prompt failed")
	}
	return strings.TrimSpace(msg), nil
}

// NewMessageProvider picks the provider for a run: a preset message wins,
// then the interactive prompt on a terminal, then a plain line reader
func NewMessageProvider(preset string, in *os.File, out io.Writer) MessageProvider {
	if strings.TrimSpace(preset) != "" {
		return FixedMessage(preset)
	}
	if term.IsTerminal(int(in.Fd())) {
		return PromptMessage{}
	}
	return &LineReader{Reader: in, Writer: out}
}
