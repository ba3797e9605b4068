package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, f Formatter) Logger {
	return NewLogger(WithLevel(DebugLevel), WithFormatter(f), WithOutput(NewWriterOutput(buf)))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: DebugLevel},
		{in: "INFO", want: InfoLevel},
		{in: "", want: InfoLevel},
		{in: "warning", want: WarnLevel},
		{in: "error", want: ErrorLevel},
		{in: "loud", want: InfoLevel, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestJSONFormatterFields(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, &JSONFormatter{})
	l.With(Component("pagewriter")).Info("segment opened", Str("path", "a.log"), Int("pages", 3))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if got["msg"] != "segment opened" {
		t.Fatalf("msg = %v", got["msg"])
	}
	if got["level"] != "INFO" {
		t.Fatalf("level = %v", got["level"])
	}
	if got["component"] != "pagewriter" || got["path"] != "a.log" {
		t.Fatalf("fields missing: %v", got)
	}
}

func TestLevelGate(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, &TextFormatter{DisableTimestamp: true})
	l.SetLevel(WarnLevel)
	l.Info("hidden")
	l.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info leaked through warn gate: %q", out)
	}
	if !strings.Contains(out, "WARN  shown") {
		t.Fatalf("warn missing: %q", out)
	}
}

func TestWithErrorAndRedaction(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(
		WithLevel(DebugLevel),
		WithFormatter(&TextFormatter{DisableTimestamp: true}),
		WithOutput(NewWriterOutput(&buf)),
		WithRedaction("token"),
	)
	l.WithError(errors.New("disk full")).Error("flush failed", Str("token", "s3cret"))
	out := buf.String()
	if !strings.Contains(out, "error=disk full") {
		t.Fatalf("error field missing: %q", out)
	}
	if strings.Contains(out, "s3cret") || !strings.Contains(out, "token=[REDACTED]") {
		t.Fatalf("token not redacted: %q", out)
	}
}

func TestApplyConfig(t *testing.T) {
	if _, err := ApplyConfig(&Config{Level: "debug", Format: "json", Outputs: []OutputConfig{{Type: "null"}}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := ApplyConfig(&Config{Outputs: []OutputConfig{{Type: "file"}}}); err == nil {
		t.Fatalf("expected error for file output without path")
	}
}

func TestToStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, &TextFormatter{DisableTimestamp: true})
	std := ToStdLogger(l, WarnLevel)
	std.Printf("pebble says %d", 42)
	if !strings.Contains(buf.String(), "WARN  pebble says 42") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestPrintfVariants(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, &TextFormatter{DisableTimestamp: true})
	l.WithComponent("pebble").Infof("compacted %d tables in %s", 3, "L0")
	out := buf.String()
	if !strings.Contains(out, "compacted 3 tables in L0") || !strings.Contains(out, "component=pebble") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestChildLevelIsIndependent(t *testing.T) {
	var buf bytes.Buffer
	root := newBufferLogger(&buf, &TextFormatter{DisableTimestamp: true})
	child := root.WithComponent("pagewriter")
	root.SetLevel(ErrorLevel)
	child.Debug("child debug")
	root.Warn("root warn")
	out := buf.String()
	if !strings.Contains(out, "child debug") {
		t.Fatalf("child lost its level: %q", out)
	}
	if strings.Contains(out, "root warn") {
		t.Fatalf("root gate ignored: %q", out)
	}
}

func TestSampling(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(
		WithLevel(DebugLevel),
		WithFormatter(&TextFormatter{DisableTimestamp: true}),
		WithOutput(NewWriterOutput(&buf)),
		WithSampling(2, 3),
	)
	for i := 0; i < 8; i++ {
		l.Info("page dropped")
	}
	// kept: 0, 1, then 2 and 5
	if n := strings.Count(buf.String(), "page dropped"); n != 4 {
		t.Fatalf("kept %d entries, want 4: %q", n, buf.String())
	}
}

func TestFormattersCarryErrorField(t *testing.T) {
	entry := &Entry{
		Level:   ErrorLevel,
		Message: "page dropped",
		Fields:  Fields{ErrorKey: errors.New("disk full"), SegmentKey: "seg-00000001.log"},
	}

	b, err := (&JSONFormatter{}).Format(entry)
	if err != nil {
		t.Fatalf("json format: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal %q: %v", b, err)
	}
	if got[ErrorKey] != "disk full" || got[SegmentKey] != "seg-00000001.log" {
		t.Fatalf("json fields: %v", got)
	}

	b, err = (&TextFormatter{DisableTimestamp: true}).Format(entry)
	if err != nil {
		t.Fatalf("text format: %v", err)
	}
	if string(b) != "ERROR page dropped error=disk full segment=seg-00000001.log\n" {
		t.Fatalf("text = %q", b)
	}
}
