// CLAUDE:SUMMARY Registers partition_text and partition_params MCP tools via kit.RegisterMCPTool.
package partition

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/unstruct/kit"
)

// RegisterMCP registers partition tools on an MCP server.
func (c *Client) RegisterMCP(srv *mcp.Server) {
	c.registerTextTool(srv)
	c.registerParamsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- partition_text ---

type textReq struct {
	Path string `json:"path"`
}

func (c *Client) registerTextTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "partition_text",
		Description: "Convert a document file (pdf, docx, pptx, images, …) to plain text via the partition service.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to partition"},
		}, []string{"path"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*textReq)
		f, err := os.Open(r.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		text, err := c.PartitionToText(ctx, f, filepath.Base(r.Path))
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"file_name": filepath.Base(r.Path),
			"chars":     len(text),
			"text":      text,
		}, nil
	}
	endpoint = kit.Chain(kit.Logging(c.cfg.Logger, "partition_text"))(endpoint)

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r textReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- partition_params ---

func (c *Client) registerParamsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "partition_params",
		Description: "Show the partition options currently resolved from the environment.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		endpoint := DefaultServerURL
		if u := ServerURL(c.cfg.Env); u != "" {
			endpoint = u
		}
		resp := map[string]any{
			"params":     c.ResolvedParams(),
			"server_url": endpoint,
		}
		if c.cfg.Credentials != nil {
			key, err := APIKey(ctx, c.cfg.Credentials)
			if err != nil {
				return nil, err
			}
			resp["has_api_key"] = key != ""
		}
		return resp, nil
	}
	endpoint = kit.Chain(kit.Logging(c.cfg.Logger, "partition_params"))(endpoint)

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
