// Package mcp exposes vigil's structural differs and replay recorder as MCP
// tools, so agent hosts can diff snapshots and record observations over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/vigil/pkg/diff"
	"github.com/aretw0/vigil/pkg/ports"
)

// Server wraps an MCP server exposing the diff and record tools.
type Server struct {
	store     ports.RecordStore
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance backed by the given record store.
func NewServer(store ports.RecordStore, version string) *Server {
	s := &Server{
		store:     store,
		mcpServer: server.NewMCPServer("vigil-mcp", version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: diff_sequences
	s.mcpServer.AddTool(mcp.NewTool("diff_sequences",
		mcp.WithDescription("Structurally diff two ordered sequences by identity: reports additions, removals and minimal moves."),
		mcp.WithString("previous", mcp.Required(), mcp.Description("JSON array: the earlier snapshot")),
		mcp.WithString("current", mcp.Required(), mcp.Description("JSON array: the later snapshot")),
	), s.handleDiffSequences)

	// TOOL: diff_maps
	s.mcpServer.AddTool(mcp.NewTool("diff_maps",
		mcp.WithDescription("Diff two JSON objects by identity: reports added, removed and changed keys."),
		mcp.WithString("previous", mcp.Required(), mcp.Description("JSON object: the earlier snapshot")),
		mcp.WithString("current", mcp.Required(), mcp.Description("JSON object: the later snapshot")),
	), s.handleDiffMaps)

	// TOOL: record_observation
	s.mcpServer.AddTool(mcp.NewTool("record_observation",
		mcp.WithDescription("Record a (key, data) observation for replay export. The first write for a key wins."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Observation key")),
		mcp.WithString("data", mcp.Required(), mcp.Description("Observation payload")),
	), s.handleRecordObservation)
}

func (s *Server) handleDiffSequences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var previous, current []any
	if err := decodeArg(request, "previous", &previous); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := decodeArg(request, "current", &current); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d := diff.NewCollectionDiffer()
	d.Check(previous)
	change := d.Check(current)

	result := map[string]any{
		"additions": itemList(change.Additions()),
		"moves":     itemList(change.Moves()),
		"removals":  itemList(change.Removals()),
	}
	payload, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleDiffMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var previous, current map[string]any
	if err := decodeArg(request, "previous", &previous); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := decodeArg(request, "current", &current); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d := diff.NewMapDiffer()
	d.Check(keyValues(previous))
	change := d.Check(keyValues(current))

	result := map[string]any{
		"additions": entryList(change.Additions()),
		"changes":   entryList(change.Changes()),
		"removals":  entryList(change.Removals()),
	}
	payload, _ := json.Marshal(result)
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleRecordObservation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := request.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stored, err := s.store.Record(ctx, key, data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("record failed: %v", err)), nil
	}
	if !stored {
		return mcp.NewToolResultText(fmt.Sprintf("key %q already recorded, ignored", key)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("recorded %q", key)), nil
}

func decodeArg(request mcp.CallToolRequest, name string, into any) error {
	raw, err := request.RequireString(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return fmt.Errorf("argument %q is not valid JSON: %w", name, err)
	}
	return nil
}

func keyValues(m map[string]any) []diff.KeyValue {
	out := make([]diff.KeyValue, 0, len(m))
	for k, v := range m {
		out = append(out, diff.KeyValue{Key: k, Value: v})
	}
	return out
}

func itemList(items []*diff.CollectionItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"item": it.Item,
			"from": it.PreviousIndex,
			"to":   it.CurrentIndex,
		})
	}
	return out
}

func entryList(entries []*diff.MapEntry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"key":      e.Key,
			"previous": e.PreviousValue,
			"current":  e.CurrentValue,
		})
	}
	return out
}
