package infra

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestHTTPServerStopsWithContext(t *testing.T) {
	srv := NewHTTPServer(&Config{Port: "0"}, http.NotFoundHandler(), NopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := srv.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestHTTPServerAbandonsRequestsAfterDrainDeadline(t *testing.T) {
	started := make(chan struct{})
	abandoned := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
		close(abandoned)
	})
	srv := NewHTTPServer(&Config{Port: "0", ShutdownTimeout: 50 * time.Millisecond}, handler, NopLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()

	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/video")
		if err == nil {
			resp.Body.Close()
		}
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the handler")
	}
	cancel()

	select {
	case <-abandoned:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request context was not cancelled")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return")
	}
}
