package utils

import (
	"context"
	"io"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"
)

func TestServerShutsDownOnContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	srv := NewServer(ln.Addr().String(), handler, time.Second, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("unexpected body %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestServerResumesOnInheritedListener(t *testing.T) {
	parent, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer parent.Close()
	f, err := parent.(*net.TCPListener).File()
	if err != nil {
		t.Fatalf("listener file: %v", err)
	}
	// hand the server its own descriptor, the way a restarted child receives fd 3
	fd, err := syscall.Dup(int(f.Fd()))
	f.Close()
	if err != nil {
		t.Fatalf("dup: %v", err)
	}

	t.Setenv(GRACEFUL_ENVIRON_KEY, "1")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "inherited")
	})
	srv := NewServer("127.0.0.1:1", handler, time.Second, time.Second)
	if !srv.isGraceful {
		t.Fatalf("expected graceful mode from environment")
	}
	srv.listenerFD = uintptr(fd)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get("http://" + parent.Addr().String() + "/"); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "inherited" {
		t.Fatalf("unexpected body %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestGracefulEnvHasSingleMarker(t *testing.T) {
	env := gracefulEnv([]string{"A=1", GRACEFUL_ENVIRON_VALUE, "B=2", GRACEFUL_ENVIRON_VALUE})
	count := 0
	for _, e := range env {
		if e == GRACEFUL_ENVIRON_VALUE {
			count++
		}
	}
	if count != 1 || len(env) != 3 || env[0] != "A=1" || env[1] != "B=2" {
		t.Fatalf("unexpected environment %v", env)
	}
}

func TestRestartNeedsTCPListener(t *testing.T) {
	srv := NewServer("", http.NotFoundHandler(), time.Second, time.Second)
	if _, err := srv.startNewProcess(); err == nil {
		t.Fatalf("expected error without a tcp listener")
	}
}
