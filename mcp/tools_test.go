package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ka2n/exo/config"
	"github.com/ka2n/exo/exoerr"
	"github.com/ka2n/exo/fetcher"
	"github.com/ka2n/exo/weburl"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

func callLoadPage(t *testing.T, f fetcher.Fetcher, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	_, handler := LoadPage(config.Default(), f)

	var req mcp.CallToolRequest
	req.Params.Name = "load_page"
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("Expected 1 content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestLoadPage(t *testing.T) {
	f := fetcher.Func(func(ctx context.Context, u weburl.URL) (string, error) {
		return "<html><head><title>Hi</title></head><body><p>hello</p></body></html>", nil
	})

	tests := []struct {
		name string
		args map[string]interface{}
		want PageInfo
	}{
		{
			name: "Default renderer passes body through",
			args: map[string]interface{}{"url": "https://example.com"},
			want: PageInfo{
				Status:  "Loaded",
				URL:     "https://example.com",
				Content: "<html><head><title>Hi</title></head><body><p>hello</p></body></html>",
			},
		},
		{
			name: "Text renderer",
			args: map[string]interface{}{"url": "https://example.com", "render": "text"},
			want: PageInfo{
				Status:  "Loaded",
				URL:     "https://example.com",
				Title:   "Hi",
				Content: "hello",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callLoadPage(t, f, tt.args)
			if res.IsError {
				t.Fatalf("Unexpected tool error: %s", resultText(t, res))
			}

			var got PageInfo
			if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
				t.Fatalf("Failed to decode result: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("load_page mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadPage_Errors(t *testing.T) {
	notFound := fetcher.Func(func(ctx context.Context, u weburl.URL) (string, error) {
		return "", exoerr.New(exoerr.Network, "HTTP Error: 404 Not Found")
	})

	tests := []struct {
		name     string
		args     map[string]interface{}
		wantText string
	}{
		{
			name:     "Missing url",
			args:     map[string]interface{}{},
			wantText: "required",
		},
		{
			name:     "Unknown renderer",
			args:     map[string]interface{}{"url": "https://example.com", "render": "pdf"},
			wantText: "oneof",
		},
		{
			name:     "Invalid url",
			args:     map[string]interface{}{"url": "not a url"},
			wantText: "URL parsing error: Invalid URL [not a url]",
		},
		{
			name:     "Fetch failure",
			args:     map[string]interface{}{"url": "https://example.com/missing"},
			wantText: "Network error: HTTP Error: 404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callLoadPage(t, notFound, tt.args)
			if !res.IsError {
				t.Fatalf("Expected tool error, got %s", resultText(t, res))
			}
			if got := resultText(t, res); !strings.Contains(got, tt.wantText) {
				t.Errorf("Expected error containing %q, got %q", tt.wantText, got)
			}
		})
	}
}

func TestInitTools(t *testing.T) {
	tools := InitTools(config.Default())
	if len(tools) != 1 || tools[0].Tool.Name != "load_page" {
		t.Errorf("Unexpected tools: %+v", tools)
	}
}

func TestCommand_UsesConfigLoader(t *testing.T) {
	wantErr := errors.New("load failed")
	var loaded bool
	cmd := Command(func(cmd *cobra.Command) (*config.Config, error) {
		loaded = true
		return nil, wantErr
	}, "test")

	if err := cmd.RunE(cmd, nil); !errors.Is(err, wantErr) {
		t.Errorf("Expected %v, got %v", wantErr, err)
	}
	if !loaded {
		t.Error("Expected the config loader to be called")
	}
}
