package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Skr3d3/holidaze-project-exam-2/internal/command"
	"github.com/Skr3d3/holidaze-project-exam-2/internal/listview"
)

// terminal reads prompts from in and reports list notifications on errOut
type terminal struct {
	in     *bufio.Reader
	fd     int
	isTTY  bool
	out    io.Writer
	errOut io.Writer
}

func newTerminal(in *os.File, out, errOut io.Writer) *terminal {
	fd := int(in.Fd())
	return &terminal{
		in:     bufio.NewReader(in),
		fd:     fd,
		isTTY:  term.IsTerminal(fd),
		out:    out,
		errOut: errOut,
	}
}

// Notify implements listview.Notifier
func (t *terminal) Notify(n listview.Notification) {
	if n.Level == listview.LevelError {
		t.errorf("%s", n.Message)
		return
	}
	fmt.Fprintln(t.errOut, n.Message)
}

func (t *terminal) errorf(format string, args ...any) {
	fmt.Fprintf(t.errOut, "error: "+format+"\n", args...)
}

// readLine prompts and reads one trimmed line
func (t *terminal) readLine(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads a password with masking when stdin is a terminal
func (t *terminal) readPassword(prompt string) (string, error) {
	if !t.isTTY {
		return t.readLine(prompt)
	}
	fmt.Fprint(t.out, prompt)
	b, err := term.ReadPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// confirmer asks y/N on the terminal, or always agrees when yes is set
func (t *terminal) confirmer(yes bool) command.Confirmer {
	if yes {
		return command.AutoConfirm
	}
	return command.ConfirmerFunc(func(_ context.Context, prompt string) (bool, error) {
		answer, err := t.readLine(prompt + " [y/N] ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}
