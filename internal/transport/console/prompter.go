package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// ErrPrompterClosed is returned by Ask after Close.
var ErrPrompterClosed = errors.New("prompter closed")

// Prompter reads answers line by line and writes prompts. A background reader
// feeds lines so a blocked read can be abandoned when the context ends; Close
// lets that reader exit.
type Prompter struct {
	in      io.Reader
	out     io.Writer
	lines   chan string
	done    chan struct{}
	stopped chan struct{}
	err     error
	once    sync.Once
	closer  sync.Once
}

// NewPrompter wraps in and out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:      in,
		out:     out,
		lines:   make(chan string),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (p *Prompter) startReader() {
	p.once.Do(func() {
		go func() {
			defer close(p.stopped)
			scanner := bufio.NewScanner(p.in)
			for scanner.Scan() {
				select {
				case p.lines <- scanner.Text():
				case <-p.done:
					return
				}
			}
			err := scanner.Err()
			if err == nil {
				err = io.EOF
			}
			p.err = err
			close(p.lines)
		}()
	})
}

// Ask writes prompt and waits for one line of input.
func (p *Prompter) Ask(ctx context.Context, prompt string) (string, error) {
	p.startReader()
	p.Print(prompt)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.done:
		return "", ErrPrompterClosed
	case line, ok := <-p.lines:
		if !ok {
			return "", p.err
		}
		return strings.TrimRight(line, "\r"), nil
	}
}

// Close releases the background reader once it has a line or input ends.
func (p *Prompter) Close() {
	p.closer.Do(func() { close(p.done) })
}

// Print writes text as-is.
func (p *Prompter) Print(text string) {
	fmt.Fprint(p.out, text)
}

// Printf writes formatted text.
func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}
