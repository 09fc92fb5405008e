// Package mcp provides an MCP (Model Context Protocol) server for cx.
// This allows AI agents to build and query C++ syntax trees through an MCP
// tool instead of the cx CLI.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/anthropics/cx/internal/config"
	"github.com/anthropics/cx/internal/cst"
	"github.com/anthropics/cx/internal/cst/selector"
	"github.com/anthropics/cx/internal/cstfrontend"
	"github.com/anthropics/cx/internal/cststore"
	"github.com/anthropics/cx/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server with cx-specific functionality.
type Server struct {
	mcpServer    *server.MCPServer
	store        *store.Store
	recorder     *cststore.Recorder
	cfg          *config.Config
	cxDir        string
	projectRoot  string
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration.
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// DefaultTools is the default set of tools to expose.
var DefaultTools = []string{"cx_cst"}

// AllTools lists all available tools.
var AllTools = []string{"cx_cst"}

// New creates a new MCP server for cx.
func New(cfg Config) (*Server, error) {
	cxDir, err := config.FindConfigDir(".")
	if err != nil {
		return nil, fmt.Errorf("cx not initialized: run 'cx init' first")
	}
	projectRoot := filepath.Dir(cxDir)

	storeDB, err := store.Open(cxDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	cxConfig, err := config.Load(projectRoot)
	if err != nil {
		storeDB.Close()
		return nil, fmt.Errorf("loading config: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"cx",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		store:        storeDB,
		recorder:     cststore.NewRecorder(storeDB),
		cfg:          cxConfig,
		cxDir:        cxDir,
		projectRoot:  projectRoot,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			storeDB.Close()
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server.
func (s *Server) registerTool(name string) error {
	switch name {
	case "cx_cst":
		return s.registerCSTTool()
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
}

// ServeStdio starts the server using stdio transport.
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded.
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "cx serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp.
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// Close closes the server and its resources.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// ListTools returns the list of registered tools.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definition for cx_cst, mirroring the
// mcp.NewTool() definition in registerCSTTool.
var toolSchemaRegistry = map[string]ToolSchema{
	"cx_cst": {
		Name:        "cx_cst",
		Description: "Build a lossless concrete syntax tree from C++-subset source and, optionally, evaluate a range-selector query against it. Records build history in the project store.",
		Parameters: []ParameterSchema{
			{Name: "source", Type: "string", Description: "C++-subset source text to build a syntax tree from", Required: true},
			{Name: "path", Type: "string", Description: "Source path to record against in build history (default: \"<inline>\")"},
			{Name: "query", Type: "string", Description: "A range-selector expression (e.g. kind(root(), \"IfStatement\")) to evaluate against the built tree"},
			{Name: "history", Type: "boolean", Description: "Return recent build history for path instead of building"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments. Returns
// the JSON result string or an error.
func (s *Server) CallTool(name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'cx serve --list-tools' to see available tools)", name)
	}

	switch name {
	case "cx_cst":
		source, _ := args["source"].(string)
		path, _ := args["path"].(string)
		query, _ := args["query"].(string)
		history, _ := args["history"].(bool)
		if history {
			if path == "" {
				return "", fmt.Errorf("path parameter is required when history is set")
			}
			return s.executeCSTHistory(path)
		}
		if source == "" {
			return "", fmt.Errorf("source parameter is required")
		}
		return s.executeCSTBuild(source, path, query)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// registerCSTTool registers the cx_cst tool.
func (s *Server) registerCSTTool() error {
	tool := mcp.NewTool("cx_cst",
		mcp.WithDescription("Build a lossless concrete syntax tree from C++-subset source and, optionally, evaluate a range-selector query against it. Records build history in the project store."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("C++-subset source text to build a syntax tree from"),
		),
		mcp.WithString("path",
			mcp.Description("Source path to record against in build history (default: \"<inline>\")"),
		),
		mcp.WithString("query",
			mcp.Description("A range-selector expression to evaluate against the built tree"),
		),
		mcp.WithBoolean("history",
			mcp.Description("Return recent build history for path instead of building"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleCST)
	return nil
}

func (s *Server) handleCST(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	args := req.GetArguments()
	source, _ := args["source"].(string)
	path, _ := args["path"].(string)
	query, _ := args["query"].(string)
	history, _ := args["history"].(bool)

	var (
		result string
		err    error
	)
	if history {
		if path == "" {
			return mcp.NewToolResultError("path parameter is required when history is set"), nil
		}
		result, err = s.executeCSTHistory(path)
	} else {
		if source == "" {
			return mcp.NewToolResultError("source parameter is required"), nil
		}
		result, err = s.executeCSTBuild(source, path, query)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result), nil
}

// executeCSTBuild lowers source into a syntax tree, records the outcome in
// the project store, and (if query is non-empty) evaluates a selector
// expression against the resulting root node.
func (s *Server) executeCSTBuild(source, path, query string) (string, error) {
	if path == "" {
		path = "<inline>"
	}
	if err := cstfrontend.ValidateGrammarSubset(s.cfg.CST.GrammarSubset); err != nil {
		return "", err
	}

	builtAt := time.Now().Unix()
	src := []byte(source)

	tu, tokens, err := cstfrontend.Translate(src)
	if err != nil {
		if _, recErr := s.recorder.RecordFailure(path, src, err, builtAt); recErr != nil {
			return "", fmt.Errorf("translate failed (%v) and recording the failure also failed: %w", err, recErr)
		}
		return "", fmt.Errorf("translate: %w", err)
	}

	tree, err := cst.Build(cst.NewArena(len(tokens)), tu, tokens)
	if err != nil {
		if _, recErr := s.recorder.RecordFailure(path, src, err, builtAt); recErr != nil {
			return "", fmt.Errorf("build failed (%v) and recording the failure also failed: %w", err, recErr)
		}
		return "", fmt.Errorf("build: %w", err)
	}

	buildID, err := s.recorder.RecordSuccess(path, src, tree, len(tokens), builtAt)
	if err != nil {
		return "", err
	}

	if s.cfg.CST.DumpTree {
		cst.Dump(os.Stderr, tree.Root())
	}

	result := map[string]interface{}{
		"build_id":    buildID,
		"path":        path,
		"root_kind":   tree.Root().Kind().String(),
		"token_count": len(tokens),
		"node_count":  countNodes(tree.Root()),
	}

	if query != "" {
		nodes, err := selector.Eval(tree.Root(), query)
		if err != nil {
			return "", fmt.Errorf("selector query: %w", err)
		}
		matches := make([]map[string]interface{}, 0, len(nodes))
		for _, n := range nodes {
			matches = append(matches, map[string]interface{}{
				"kind":        n.Kind().String(),
				"role":        n.Role().String(),
				"first_token": int(n.FirstToken()),
				"last_token":  int(n.LastToken()),
				"is_leaf":     n.IsLeaf(),
				"can_modify":  n.CanModify(),
			})
		}
		result["query"] = query
		result["matches"] = matches
	}

	return toJSON(result)
}

// executeCSTHistory returns the most recent build records for path.
func (s *Server) executeCSTHistory(path string) (string, error) {
	summaries, err := s.recorder.RecentBuilds(path, 20)
	if err != nil {
		return "", err
	}
	return toJSON(map[string]interface{}{
		"path":   path,
		"builds": summaries,
		"count":  len(summaries),
	})
}

func countNodes(n *cst.Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children() {
		total += countNodes(c)
	}
	return total
}

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
