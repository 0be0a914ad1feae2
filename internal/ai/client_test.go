package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

type ipv4Server struct {
	URL string
	srv *http.Server
	ln  net.Listener
}

func newIPv4Server(t *testing.T, handler http.Handler) *ipv4Server {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: handler}
	s := &ipv4Server{
		URL: "http://" + ln.Addr().String(),
		srv: srv,
		ln:  ln,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(fmt.Sprintf("test server serve: %v", err))
		}
	}()
	return s
}

func (s *ipv4Server) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

// narrativeServer answers /chat/completions with the given reply, optionally
// failing the first n requests with the given status before succeeding.
func narrativeServer(t *testing.T, failFirst int, failStatus int, failHeader http.Header, reply string) *ipv4Server {
	t.Helper()
	var calls int32
	return newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if int(atomic.AddInt32(&calls, 1)) <= failFirst {
			for k, vals := range failHeader {
				for _, v := range vals {
					w.Header().Add(k, v)
				}
			}
			w.WriteHeader(failStatus)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "rate limited"}})
			return
		}
		_ = json.NewEncoder(w).Encode(GenerateResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: reply}}},
		})
	}))
}

func TestRequestCarriesAttributionHeaders(t *testing.T) {
	var referer, title, auth string
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		auth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(GenerateResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: "ok"}}},
		})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("sk-test", 2*time.Second, 1, 10*time.Millisecond, 50*time.Millisecond, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := c.Generate(ctx, GenerateRequest{
		Model:    "test-model",
		Messages: []Message{{Role: "user", Content: "Summarize Scope 1 emissions."}},
	}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if referer != "https://github.com/KaramelBytes/esgloom-cli" {
		t.Fatalf("HTTP-Referer = %q", referer)
	}
	if title != "Esgloom CLI" {
		t.Fatalf("X-Title = %q", title)
	}
	if auth != "Bearer sk-test" {
		t.Fatalf("Authorization = %q", auth)
	}
}

func TestGenerateRetriesOnRateLimit(t *testing.T) {
	srv := narrativeServer(t, 1, http.StatusTooManyRequests,
		http.Header{"Retry-After": {"0"}},
		"Scope 1 emissions fell 12% against the prior year.")
	defer srv.Close()

	c := NewClientWithBaseURL("sk-test", 2*time.Second, 3, 10*time.Millisecond, 100*time.Millisecond, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := c.Generate(ctx, GenerateRequest{
		Model:     "test-model",
		Messages:  []Message{{Role: "user", Content: "Write the environmental section."}},
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(resp.Choices) == 0 || !strings.Contains(resp.Choices[0].Message.Content, "Scope 1") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGenerateHonorsRetryAfter(t *testing.T) {
	srv := narrativeServer(t, 1, http.StatusTooManyRequests,
		http.Header{"Retry-After": {"1"}}, "recovered")
	defer srv.Close()

	c := NewClientWithBaseURL("sk-test", 5*time.Second, 3, 0, 0, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	_, err := c.Generate(ctx, GenerateRequest{
		Model:    "test-model",
		Messages: []Message{{Role: "user", Content: "Write the governance section."}},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	// allow some scheduling variance below the advertised 1s
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Fatalf("expected ~1s Retry-After delay, got %v", elapsed)
	}
}

func TestGenerateErrorIncludesRequestID(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "req_esg_456")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad req", "code": "bad_request"}})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("sk-test", 2*time.Second, 1, 10*time.Millisecond, 50*time.Millisecond, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.Generate(ctx, GenerateRequest{
		Model:    "test-model",
		Messages: []Message{{Role: "user", Content: "Compare year-over-year waste volumes."}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var bad *BadRequestError
	if !errors.As(err, &bad) {
		t.Fatalf("err = %T, want *BadRequestError", err)
	}
	if !strings.Contains(err.Error(), "req_esg_456") {
		t.Fatalf("expected request id in error, got: %v", err)
	}
}

func TestGenerateUnauthorizedClassified(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "invalid key"}})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("sk-bad", 2*time.Second, 1, 10*time.Millisecond, 50*time.Millisecond, srv.URL)
	_, err := c.Generate(context.Background(), GenerateRequest{
		Model:    "test-model",
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
}

func TestGenerateStreamAssemblesNarrative(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Energy use declined \"}}]}\n\n")
		fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"8.2%% this year.\"}}]}\n\n")
		fmt.Fprintf(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("sk-test", 5*time.Second, 1, 0, 0, srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var out string
	err := c.GenerateStream(ctx, GenerateRequest{
		Model:    "test-model",
		Messages: []Message{{Role: "user", Content: "Write the energy paragraph."}},
	}, func(d string) { out += d })
	if err != nil {
		t.Fatalf("GenerateStream error: %v", err)
	}
	if out != "Energy use declined 8.2% this year." {
		t.Fatalf("unexpected stream accumulation: %q", out)
	}
}

func TestGenerateMissingAPIKey(t *testing.T) {
	c := NewClientWithBaseURL("", time.Second, 1, 0, 0, "http://127.0.0.1:0")
	if _, err := c.Generate(context.Background(), GenerateRequest{Model: "m"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
