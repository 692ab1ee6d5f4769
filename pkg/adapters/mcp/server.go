package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/grove"
	"github.com/aretw0/grove/internal/logging"
	"github.com/aretw0/grove/internal/presentation/graph"
	"github.com/aretw0/grove/pkg/domain"
	"github.com/aretw0/grove/pkg/reporter"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	treeURI  = "grove://tree"
	graphURI = "grove://graph"
)

// RunResponse is the structured result of the run_examples tool.
type RunResponse struct {
	OK              bool                    `json:"ok" jsonschema_description:"True when no example and no context hook failed"`
	Counts          map[domain.Status]int   `json:"counts" jsonschema_description:"Number of examples per status"`
	Results         []domain.ExecutionResult `json:"results" jsonschema_description:"One entry per selected example, in run order"`
	ContextFailures []domain.ContextFailure `json:"context_failures,omitempty" jsonschema_description:"before/after hook failures"`
	Seed            uint64                  `json:"seed" jsonschema_description:"Seed that reproduces the run order"`
	Summary         string                  `json:"summary" jsonschema_description:"Markdown summary of the failures"`
}

// Suite defines what the MCP server needs from a grove suite.
type Suite interface {
	Tree() (*domain.Tree, error)
	RunWithHooks(ctx context.Context, hooks domain.LifecycleHooks, addrs ...domain.Address) (*domain.Report, error)
}

var _ Suite = (*grove.Suite)(nil)

// Server wraps a suite and exposes it as an MCP Server.
type Server struct {
	suite     Suite
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(suite Suite, opts ...Option) *Server {
	s := &Server{
		suite:     suite,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("grove-mcp", strings.TrimSpace(grove.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: list_nodes
	s.mcpServer.AddTool(mcp.NewTool("list_nodes",
		mcp.WithDescription("List the specification tree: every context and example with its structural address."),
	), s.handleListNodes)

	// TOOL: run_examples
	runTool := mcp.NewTool("run_examples",
		mcp.WithDescription("Run the suite, or only the subtrees named by the selectors, and return one result per example."),
		mcp.WithString("select", mcp.Description(`Comma-separated selectors: "[0:1]", "file.go[0:1]" or "file.go:42" (optional)`)),
		mcp.WithOutputSchema[RunResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunExamples))
}

func (s *Server) handleListNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := s.suite.Tree()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}
	jsonBytes, _ := json.Marshal(tree.Root.Children)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleRunExamples(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RunResponse, error) {
	tree, err := s.suite.Tree()
	if err != nil {
		return RunResponse{}, fmt.Errorf("build failed: %w", err)
	}

	var selectors []string
	if raw, ok := args["select"].(string); ok {
		for _, sel := range strings.Split(raw, ",") {
			if sel = strings.TrimSpace(sel); sel != "" {
				selectors = append(selectors, sel)
			}
		}
	}
	addrs, err := tree.ResolveAll(selectors)
	if err != nil {
		return RunResponse{}, err
	}

	report, err := s.suite.RunWithHooks(ctx, domain.LifecycleHooks{}, addrs...)
	if err != nil {
		s.logger.Error("MCP run_examples failed", "err", err)
		return RunResponse{}, fmt.Errorf("run failed: %w", err)
	}

	return RunResponse{
		OK:              report.OK(),
		Counts:          report.Counts(),
		Results:         report.Results,
		ContextFailures: report.ContextFailures,
		Seed:            report.Seed,
		Summary:         reporter.Summary(report),
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: grove://tree
	s.mcpServer.AddResource(mcp.NewResource(treeURI, "Specification Tree",
		mcp.WithMIMEType("application/json"),
	), s.readTree)

	// EXPOSE: grove://graph
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Specification Tree (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), s.readGraph)
}

func (s *Server) readTree(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tree, err := s.suite.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}
	jsonBytes, _ := json.Marshal(tree.Root.Children)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      treeURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) readGraph(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tree, err := s.suite.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      graphURI,
			MIMEType: "text/plain",
			Text:     graph.GenerateMermaid(tree, nil),
		},
	}, nil
}
