package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	grpcserver "github.com/rzbill/pagelog/internal/server/grpc"
)

type ingestStub struct {
	mu       sync.Mutex
	appended []string
	segPath  string
}

func (s *ingestStub) Append(_ context.Context, in *wrapperspb.BytesValue) (*emptypb.Empty, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, string(in.GetValue()))
	return &emptypb.Empty{}, nil
}

func (s *ingestStub) Health(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("ok"), nil
}

func (s *ingestStub) Segments(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return structpb.NewList([]any{
		map[string]any{"seq": 3.0, "path": s.segPath, "openedAtMs": 1000.0},
	})
}

func startGRPCStub(t *testing.T, svc grpcserver.IngestServer) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	gs := grpc.NewServer()
	grpcserver.RegisterIngestServer(gs, svc)
	go func() { _ = gs.Serve(l) }()
	t.Cleanup(gs.Stop)
	return l.Addr().String()
}

func run(t *testing.T, baseURL string, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(func() string { return baseURL })
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeSegment(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "segment-00000003.log")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestAppendGRPC(t *testing.T) {
	stub := &ingestStub{}
	t.Setenv("PAGELOG_GRPC", startGRPCStub(t, stub))

	out, err := run(t, "", "", "append", "hello", "world")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "appended: 1") {
		t.Fatalf("output: %s", out)
	}

	out, err = run(t, "", "a\n\nb\n", "append", "--stdin")
	if err != nil {
		t.Fatalf("execute stdin: %v", err)
	}
	if !strings.Contains(out, "appended: 2") {
		t.Fatalf("output: %s", out)
	}
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if strings.Join(stub.appended, "|") != "hello world|a|b" {
		t.Fatalf("appended %q", stub.appended)
	}
}

func TestHealthAndSegmentsGRPC(t *testing.T) {
	stub := &ingestStub{segPath: writeSegment(t, "one\ntwo\n")}
	t.Setenv("PAGELOG_GRPC", startGRPCStub(t, stub))

	out, err := run(t, "", "", "health")
	if err != nil || !strings.Contains(out, "status: ok") {
		t.Fatalf("health: %v %s", err, out)
	}

	out, err = run(t, "", "", "segments", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, stub.segPath) || !strings.Contains(out, "SEQ") {
		t.Fatalf("list output: %s", out)
	}

	out, err = run(t, "", "", "segments", "list", "--lines")
	if err != nil {
		t.Fatalf("list --lines: %v", err)
	}
	if !strings.Contains(out, "LINES") || !strings.Contains(out, "  2  ") {
		t.Fatalf("list --lines output: %s", out)
	}

	out, err = run(t, "", "", "segments", "cat", "3")
	if err != nil {
		t.Fatalf("cat: %v", err)
	}
	if out != "one\ntwo\n" {
		t.Fatalf("cat output %q", out)
	}
	if _, err := run(t, "", "", "segments", "cat", "9"); err == nil {
		t.Fatalf("unknown seq should fail")
	}
}

func TestHTTPTransport(t *testing.T) {
	segPath := writeSegment(t, "x\n")
	var (
		mu  sync.Mutex
		got []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/records", func(w http.ResponseWriter, r *http.Request) {
		b := new(bytes.Buffer)
		_, _ = b.ReadFrom(r.Body)
		mu.Lock()
		got = append(got, b.String())
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]int{"accepted": 1})
	})
	mux.HandleFunc("GET /v1/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_serving"})
	})
	mux.HandleFunc("GET /v1/segments", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"segments": []map[string]any{
			{"seq": 0, "path": segPath, "openedAtMs": time.Now().UnixMilli(), "size": 2},
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	if _, err := run(t, srv.URL, "", "append", "--transport", "http", "payload"); err != nil {
		t.Fatalf("append: %v", err)
	}
	mu.Lock()
	if len(got) != 1 || got[0] != "payload" {
		t.Fatalf("server got %q", got)
	}
	mu.Unlock()
	out, err := run(t, srv.URL, "", "health", "--transport", "http")
	if err != nil || !strings.Contains(out, "not_serving") {
		t.Fatalf("health: %v %s", err, out)
	}
	out, err = run(t, srv.URL, "", "segments", "list", "--transport", "http")
	if err != nil || !strings.Contains(out, segPath) {
		t.Fatalf("list: %v %s", err, out)
	}
	if _, err := run(t, srv.URL, "", "health", "--transport", "carrier-pigeon"); err == nil {
		t.Fatalf("unknown transport should fail")
	}
}

func TestAppendRequiresInput(t *testing.T) {
	if _, err := run(t, "", "", "append"); err == nil {
		t.Fatalf("append without args should fail")
	}
}
