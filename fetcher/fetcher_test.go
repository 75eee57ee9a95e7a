package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ka2n/exo/exoerr"
	"github.com/ka2n/exo/weburl"
)

func mustURL(t *testing.T, s string) weburl.URL {
	t.Helper()
	u, err := weburl.Parse(s)
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", s, err)
	}
	return u
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        []byte
		want        string
		wantErr     string
	}{
		{
			name:        "Success returns body",
			status:      http.StatusOK,
			contentType: "text/html; charset=utf-8",
			body:        []byte("<html>hi</html>"),
			want:        "<html>hi</html>",
		},
		{
			name:        "Latin-1 body is decoded",
			status:      http.StatusOK,
			contentType: "text/plain; charset=iso-8859-1",
			body:        []byte{'c', 'a', 'f', 0xe9},
			want:        "café",
		},
		{
			name:    "No content is success",
			status:  http.StatusNoContent,
			want:    "",
			wantErr: "",
		},
		{
			name:    "Not found",
			status:  http.StatusNotFound,
			body:    []byte("missing"),
			wantErr: "Network error: HTTP Error: 404 Not Found",
		},
		{
			name:    "Server error",
			status:  http.StatusInternalServerError,
			wantErr: "Network error: HTTP Error: 500 Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("Expected GET, got %s", r.Method)
				}
				if ua := r.Header.Get("User-Agent"); ua != UserAgent {
					t.Errorf("Expected User-Agent %q, got %q", UserAgent, ua)
				}
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()

			got, err := New(0).Fetch(context.Background(), mustURL(t, srv.URL))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Expected error %q, got body %q", tt.wantErr, got)
				}
				if err.Error() != tt.wantErr {
					t.Errorf("Expected error %q, got %q", tt.wantErr, err.Error())
				}
				if exoerr.KindOf(err) != exoerr.Network {
					t.Errorf("Expected Network kind, got %v", exoerr.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Fetch() = %q, want %q", got, tt.want)
			}
		})
	}
}

type errorTransport struct{}

func (e *errorTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
func (brokenBody) Close() error             { return nil }

type brokenBodyTransport struct{}

func (b *brokenBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       brokenBody{},
		Request:    req,
	}, nil
}

func TestFetch_TransportError(t *testing.T) {
	f := &HTTP{Client: &http.Client{Transport: &errorTransport{}}}

	_, err := f.Fetch(context.Background(), mustURL(t, "https://example.com"))
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if exoerr.KindOf(err) != exoerr.Network {
		t.Errorf("Expected Network kind, got %v", exoerr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "Request failed:") || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestFetch_BodyReadError(t *testing.T) {
	f := &HTTP{Client: &http.Client{Transport: &brokenBodyTransport{}}}

	_, err := f.Fetch(context.Background(), mustURL(t, "https://example.com"))
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.HasPrefix(err.Error(), "Network error: Failed to read response body:") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := New(50 * time.Millisecond)
	_, err := f.Fetch(context.Background(), mustURL(t, srv.URL))
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
	if exoerr.KindOf(err) != exoerr.Network {
		t.Errorf("Expected Network kind, got %v", exoerr.KindOf(err))
	}
}

func TestFetch_Func(t *testing.T) {
	var called int
	var f Fetcher = Func(func(ctx context.Context, u weburl.URL) (string, error) {
		called++
		return u.String(), nil
	})

	got, err := f.Fetch(context.Background(), mustURL(t, "https://example.com/x"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "https://example.com/x" || called != 1 {
		t.Errorf("Func adapter returned %q after %d calls", got, called)
	}
}

func TestClient_SharedOnce(t *testing.T) {
	if Client() != Client() {
		t.Error("Expected the shared client to be constructed once")
	}
	if New(0).client() != Client() {
		t.Error("Expected fetchers without an override to use the shared client")
	}
}
