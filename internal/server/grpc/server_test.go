package grpcserver

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	cfgpkg "github.com/rzbill/pagelog/internal/config"
	"github.com/rzbill/pagelog/internal/runtime"
)

const bufSize = 1 << 20

func dialer(s *grpc.Server) func(context.Context, string) (net.Conn, error) {
	lis := bufconn.Listen(bufSize)
	go func() { _ = s.Serve(lis) }()
	return func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
}

func newClient(t *testing.T, cfg cfgpkg.Config) (*IngestClient, *runtime.Runtime) {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Config: cfg})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	if err := rt.Start(context.Background()); err != nil {
		t.Fatalf("rt start: %v", err)
	}
	srv := New(rt, nil)
	t.Cleanup(func() {
		srv.grpc.Stop()
		_ = rt.Stop(context.Background())
	})
	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(dialer(srv.grpc)),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return NewIngestClient(conn), rt
}

func TestHealthOverGRPC(t *testing.T) {
	c, _ := newClient(t, cfgpkg.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if got != "ok" {
		t.Fatalf("status = %q", got)
	}
}

func TestAppendOverGRPC(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Filter = `!text.contains("secret")`
	c, rt := newClient(t, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Append(ctx, []byte("hello")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := c.Append(ctx, []byte("my secret")); status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("filtered append: %v", err)
	}
	if err := c.Append(ctx, nil); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("empty append: %v", err)
	}

	// the worker registers its first segment asynchronously
	var segs *structpb.ListValue
	for deadline := time.Now().Add(time.Second); ; time.Sleep(5 * time.Millisecond) {
		var err error
		if segs, err = c.Segments(ctx); err != nil {
			t.Fatalf("segments: %v", err)
		}
		if len(segs.GetValues()) == 1 || time.Now().After(deadline) {
			break
		}
	}
	if len(segs.GetValues()) != 1 {
		t.Fatalf("segments = %v", segs)
	}
	path := segs.GetValues()[0].GetStructValue().GetFields()["path"].GetStringValue()

	if err := rt.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read segment: %v", err)
	}
	if string(b) != "hello\n" {
		t.Fatalf("segment = %q", b)
	}

	if err := c.Append(ctx, []byte("late")); status.Code(err) != codes.Unavailable {
		t.Fatalf("append after stop: %v", err)
	}
	if got, _ := c.Health(ctx); got != "not_serving" {
		t.Fatalf("health after stop = %q", got)
	}
}
