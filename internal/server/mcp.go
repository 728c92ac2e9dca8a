package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/corpuskit/corpus/internal/search"
	"github.com/corpuskit/corpus/pkg/version"
)

// MCPServer serves the retrieval API over MCP stdio for agent clients.
type MCPServer struct {
	mcp     *mcp.Server
	service *Service
	logger  *slog.Logger
}

// NewMCPServer wires the service into an MCP server and registers the tools.
func NewMCPServer(service *Service) *MCPServer {
	s := &MCPServer{
		service: service,
		logger:  slog.Default(),
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "corpus",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP over stdio until the client disconnects or ctx is canceled.
func (s *MCPServer) Run(ctx context.Context) error {
	s.logger.Info("mcp server started", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		return err
	}
	s.logger.Info("mcp server stopped")
	return nil
}

func (s *MCPServer) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_collections",
		Description: "List the registered collections with their id, kind and source.",
	}, s.listCollectionsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_files",
		Description: "List the relative file paths inside one collection.",
	}, s.listFilesHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_file",
		Description: "Read a file from a collection, optionally restricted to an inclusive line range.",
	}, s.getFileHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "Ranked lexical search over one collection. Lines matching more query terms rank higher; a contiguous full-query match ranks highest.",
	}, s.searchHandler)

	s.logger.Debug("mcp tools registered", slog.Int("count", 4))
}

// ListCollectionsInput is the (empty) input schema for list_collections.
type ListCollectionsInput struct{}

// ListCollectionsOutput is the output schema for list_collections.
type ListCollectionsOutput struct {
	Collections []CollectionInfo `json:"collections" jsonschema:"registered collections"`
}

func (s *MCPServer) listCollectionsHandler(ctx context.Context, _ *mcp.CallToolRequest, _ ListCollectionsInput) (
	*mcp.CallToolResult,
	ListCollectionsOutput,
	error,
) {
	cols, err := s.service.ListCollections(ctx)
	if err != nil {
		return nil, ListCollectionsOutput{}, err
	}
	return nil, ListCollectionsOutput{Collections: cols}, nil
}

// ListFilesInput is the input schema for list_files.
type ListFilesInput struct {
	Collection string `json:"collection" jsonschema:"collection id to list"`
}

// ListFilesOutput is the output schema for list_files.
type ListFilesOutput struct {
	Paths []string `json:"paths" jsonschema:"relative file paths in collection order"`
}

func (s *MCPServer) listFilesHandler(ctx context.Context, _ *mcp.CallToolRequest, input ListFilesInput) (
	*mcp.CallToolResult,
	ListFilesOutput,
	error,
) {
	paths, err := s.service.ListFiles(ctx, input.Collection)
	if err != nil {
		return nil, ListFilesOutput{}, err
	}
	return nil, ListFilesOutput{Paths: paths}, nil
}

// GetFileInput is the input schema for get_file.
type GetFileInput struct {
	Collection string `json:"collection" jsonschema:"collection id"`
	Path       string `json:"path" jsonschema:"relative file path inside the collection"`
	Start      int    `json:"start,omitempty" jsonschema:"first line to return, 1-based inclusive"`
	End        int    `json:"end,omitempty" jsonschema:"last line to return, 1-based inclusive"`
}

// GetFileOutput is the output schema for get_file.
type GetFileOutput struct {
	Path    string `json:"path" jsonschema:"requested file path"`
	Content string `json:"content" jsonschema:"file content, possibly a line range"`
}

func (s *MCPServer) getFileHandler(ctx context.Context, _ *mcp.CallToolRequest, input GetFileInput) (
	*mcp.CallToolResult,
	GetFileOutput,
	error,
) {
	content, err := s.service.GetFile(ctx, input.Collection, input.Path, input.Start, input.End)
	if err != nil {
		return nil, GetFileOutput{}, err
	}
	return nil, GetFileOutput{Path: input.Path, Content: content}, nil
}

// SearchInput is the input schema for search.
type SearchInput struct {
	Collection    string `json:"collection" jsonschema:"collection id to search"`
	Query         string `json:"query" jsonschema:"search query, tokenized on non-alphanumeric boundaries"`
	TopK          int    `json:"top_k,omitempty" jsonschema:"maximum results, default 50, capped at 500"`
	CaseSensitive bool   `json:"case_sensitive,omitempty" jsonschema:"match case exactly instead of folding"`
}

// SearchOutput is the output schema for search.
type SearchOutput struct {
	Results []search.Result `json:"results" jsonschema:"ranked matching lines"`
}

func (s *MCPServer) searchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	results, err := s.service.Search(ctx, input.Collection, input.Query, search.Options{
		TopK:          input.TopK,
		CaseSensitive: input.CaseSensitive,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, SearchOutput{Results: results}, nil
}
