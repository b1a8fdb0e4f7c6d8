package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func bufferedSpinner(ctx context.Context, message string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, message)
	s.out = &buf
	return s, &buf
}

func TestSpinnerDrawsMessage(t *testing.T) {
	s, buf := bufferedSpinner(context.Background(), "Planning 500 lines...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Planning 500 lines...") {
		t.Errorf("spinner output %q lacks the message", buf.String())
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after Stop")
	}
}

func TestSpinnerContextCancellation(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s, _ := bufferedSpinner(ctx, "Rendering...")
			s.Start()
			time.Sleep(100 * time.Millisecond)

			if !s.Cancelled() {
				t.Error("spinner should be cancelled with its context")
			}
			s.Stop()
		})
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := bufferedSpinner(context.Background(), "Stopping...")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerClearsLine(t *testing.T) {
	s, buf := bufferedSpinner(context.Background(), "abc")
	s.Start()
	s.Stop()

	want := "\r" + strings.Repeat(" ", len("abc")+4) + "\r"
	if !strings.HasSuffix(buf.String(), want) {
		t.Errorf("output %q does not end with a cleared line", buf.String())
	}
}
