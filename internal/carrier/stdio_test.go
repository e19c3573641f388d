package carrier

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/goleak"
)

func echoHandler(ctx context.Context, raw []byte) []byte {
	if bytes.Contains(raw, []byte(`"notify"`)) {
		return nil
	}
	return append([]byte(nil), raw...)
}

func TestStdioCarrierEchoesEachLine(t *testing.T) {
	in := strings.NewReader("{\"a\":1}\n{\"a\":2}\n")
	var out bytes.Buffer

	c := NewStdioCarrier(in, &out, echoHandler, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	want := "{\"a\":1}\n{\"a\":2}\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestStdioCarrierSkipsNilReplies(t *testing.T) {
	in := strings.NewReader("{\"notify\":true}\n{\"a\":1}\n")
	var out bytes.Buffer

	c := NewStdioCarrier(in, &out, echoHandler, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	want := "{\"a\":1}\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestStdioCarrierSkipsBlankLines(t *testing.T) {
	in := strings.NewReader("\n{\"a\":1}\n\n")
	var out bytes.Buffer

	c := NewStdioCarrier(in, &out, echoHandler, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	want := "{\"a\":1}\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestStdioCarrierStopUnblocksAfterEOF(t *testing.T) {
	defer goleak.VerifyNone(t)

	in := strings.NewReader("{\"a\":1}\n")
	var out bytes.Buffer

	c := NewStdioCarrier(in, &out, echoHandler, nil)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
}
