package tuitest

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestRunWaitsForExpectedOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("pty harness needs a unix shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	rec, err := Run(context.Background(), Config{
		Command: []string{sh, "-c", `printf 'ready\n'; read line; printf 'got %s\n' "$line"`},
		Steps: []Step{
			{Expect: "ready", Input: []byte("Heartfire\r")},
			{Expect: "got Heartfire"},
		},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(rec.PlainText(), "got Heartfire") {
		t.Fatalf("missing echoed line in %q", rec.PlainText())
	}
}

func TestRunRequiresCommand(t *testing.T) {
	if _, err := Run(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestTerminalResponderAnswersInOrder(t *testing.T) {
	var out bytes.Buffer
	tr := newTerminalResponder(&out)
	tr.Process([]byte("hello\x1b]11;?\x07world\x1b["))
	tr.Process([]byte("6n"))

	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if out.String() != want {
		t.Fatalf("responses = %q, want %q", out.String(), want)
	}
}

func TestParseFramesSplitsOnClear(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[Hfirst screen\r\n\x1b[2J\x1b[H\x1b[1mkanatacg\x1b[0m out of stock  \r\n")
	rec := &Recording{Raw: raw, Frames: parseFrames(raw)}

	if len(rec.Frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(rec.Frames))
	}
	final, _ := rec.FinalFrame()
	if final.Plain != "kanatacg out of stock" {
		t.Fatalf("final frame = %q", final.Plain)
	}
	if frame, ok := rec.FrameContaining("first"); !ok || frame.Index != 0 {
		t.Fatalf("FrameContaining(first) = %+v, %v", frame, ok)
	}
}
