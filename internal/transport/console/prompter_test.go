package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestPrompterAsk(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader("first\r\nsecond\n"), out)
	ctx := context.Background()

	for _, want := range []string{"first", "second"} {
		got, err := p.Ask(ctx, "> ")
		if err != nil {
			t.Fatalf("Ask returned error: %v", err)
		}
		if got != want {
			t.Fatalf("Ask = %q, want %q", got, want)
		}
	}
	if _, err := p.Ask(ctx, "> "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if _, err := p.Ask(ctx, "> "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF on repeated read, got %v", err)
	}
	if out.String() != "> > > > " {
		t.Fatalf("unexpected prompts %q", out.String())
	}
}

func TestPrompterCloseReleasesReader(t *testing.T) {
	pr, pw := io.Pipe()
	defer pr.Close()
	p := NewPrompter(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Ask(ctx, "> "); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The reader picks up a line nobody asks for and must not block on it forever.
	go func() {
		_, _ = pw.Write([]byte("late answer\n"))
	}()
	p.Close()

	select {
	case <-p.stopped:
	case <-time.After(time.Second):
		t.Fatal("background reader still running after Close")
	}

	if _, err := p.Ask(context.Background(), "> "); !errors.Is(err, ErrPrompterClosed) {
		t.Fatalf("expected ErrPrompterClosed, got %v", err)
	}
}
