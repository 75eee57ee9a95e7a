package mcp

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/ka2n/exo/browser"
	"github.com/ka2n/exo/config"
	"github.com/ka2n/exo/fetcher"
	"github.com/ka2n/exo/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

func InitTools(cfg *config.Config) []server.ServerTool {
	tools := []server.ServerTool{}

	tools = append(tools, newServerTool(LoadPage(cfg, nil)))

	return tools
}

// PageInfo is the JSON result of load_page
type PageInfo struct {
	Status  string `json:"status"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// LoadPage returns the load_page tool. A nil fetcher uses the HTTP fetcher
// configured by cfg.
func LoadPage(cfg *config.Config, f fetcher.Fetcher) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	if f == nil {
		f = fetcher.New(cfg.Timeout)
	}
	return mcp.NewTool(
			"load_page",
			mcp.WithDescription("Load a web page over http or https and return its content as text"),
			mcp.WithString("url", mcp.Required(), mcp.Description("Absolute http or https URL")),
			mcp.WithString("render", mcp.Description("Renderer: plain (raw body), text (visible text) or markdown")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				URL    string `json:"url" validate:"required"`
				Render string `json:"render" validate:"omitempty,oneof=plain text markdown"`
			}
			var args ToolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			name := args.Render
			if name == "" {
				name = cfg.Render
			}
			transformer, err := render.ByName(name)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			// Each call gets its own controller so it is the only consumer
			ctrl := browser.NewController(f, transformer, browser.NewChannel(cfg.ChannelCapacity))
			defer ctrl.Close()

			state, err := loadAndWait(ctx, ctrl, args.URL)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if state.Status == browser.StatusError {
				return mcp.NewToolResultError(state.Err.Error()), nil
			}

			info := PageInfo{
				Status:  state.Status.String(),
				Title:   state.Output.Title,
				Content: state.Output.Text,
			}
			if state.URL != nil {
				info.URL = state.URL.String()
			}

			b, err := json.Marshal(info)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return mcp.NewToolResultText(string(b)), nil
		}
}

// loadAndWait requests raw and returns its terminal state
func loadAndWait(ctx context.Context, ctrl *browser.Controller, raw string) (browser.State, error) {
	updates, _ := ctrl.Updates().Attach()
	defer ctrl.Updates().Detach()

	ctrl.RequestLoad(raw)
	for {
		select {
		case s, ok := <-updates:
			if !ok {
				return ctrl.Current(), nil
			}
			if s.Status.IsTerminal() {
				return s, nil
			}
		case <-ctx.Done():
			return browser.State{}, ctx.Err()
		}
	}
}
