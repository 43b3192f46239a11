// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the knowledge-base engine for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/note"
	"github.com/starford/ansuz/internal/organization"
)

// Server wraps the MCP server with knowledge-base tools.
type Server struct {
	mcp *server.MCPServer
	org *organization.Organization
}

// New creates a new MCP server with all tools registered.
func New(org *organization.Organization) *Server {
	s := &Server{org: org}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Insert a new note. The note is linked to the previous head of the target path."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note content")),
		mcp.WithString("topic", mcp.Description("Topic to insert into (defaults to the current topic)")),
		mcp.WithString("path", mcp.Description("Path to insert at (defaults to the topic's current path)")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("show_note",
		mcp.WithDescription("Read the content and metadata of the note a location expression resolves to."),
		mcp.WithString("location", mcp.Required(), mcp.Description("Location expression, e.g. 'HEAD', 'topic/path:-2' or an 8-hex-digit short id")),
	), s.showNote)

	s.mcp.AddTool(mcp.NewTool("resolve_location",
		mcp.WithDescription("Resolve a location expression to note metadata without reading the content."),
		mcp.WithString("location", mcp.Required(), mcp.Description("Location expression")),
	), s.resolveLocation)

	s.mcp.AddTool(mcp.NewTool("add_keyword",
		mcp.WithDescription("File the note at a location under a keyword."),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("Keyword to file under")),
		mcp.WithString("location", mcp.Description("Location expression (defaults to HEAD)")),
	), s.addKeyword)

	s.mcp.AddTool(mcp.NewTool("search_keyword",
		mcp.WithDescription("List the notes filed under a keyword."),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("Keyword to search")),
	), s.searchKeyword)

	s.mcp.AddTool(mcp.NewTool("list_topics",
		mcp.WithDescription("List every topic in the repository."),
	), s.listTopics)

	s.mcp.AddTool(mcp.NewTool("list_keywords",
		mcp.WithDescription("List every keyword with the number of notes filed under it."),
	), s.listKeywords)

	return s
}

// Serve runs the MCP server on stdin/stdout until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// noteView is the JSON shape returned for note metadata.
type noteView struct {
	ID         string   `json:"id"`
	ParentID   string   `json:"parent_id,omitempty"`
	Topic      string   `json:"topic"`
	Path       string   `json:"path"`
	References []string `json:"references,omitempty"`
}

func viewOf(m *note.Metadata) noteView {
	v := noteView{ID: m.ID.String(), Topic: m.Topic, Path: m.Path}
	if !m.ParentID.IsNil() {
		v.ParentID = m.ParentID.String()
	}
	for _, ref := range m.References {
		v.References = append(v.References, ref.String())
	}
	return v
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topic := req.GetString("topic", "")
	path := req.GetString("path", "")

	report, err := s.org.AddNote([]byte(content), topic, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]string{
		"note_id":   report.NoteID.String(),
		"parent_id": parentString(report),
		"topic":     report.Topic,
		"path":      report.Path,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func parentString(r *organization.NoteReport) string {
	if r.ParentID.IsNil() {
		return ""
	}
	return r.ParentID.String()
}

func (s *Server) showNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta, err := s.org.SolveLocation(loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if meta == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no note at %s", loc)), nil
	}
	content, err := s.org.NoteContent(meta.ID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	header, _ := json.MarshalIndent(viewOf(meta), "", "  ")
	return mcp.NewToolResultText(string(header) + "\n\n" + string(content)), nil
}

func (s *Server) resolveLocation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc, err := req.RequireString("location")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meta, err := s.org.SolveLocation(loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if meta == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no note at %s", loc)), nil
	}
	out, _ := json.MarshalIndent(viewOf(meta), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addKeyword(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kw, err := req.RequireString("keyword")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	loc := req.GetString("location", "")
	if err := s.org.AddKeyword(kw, loc); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("filed under %q", kw)), nil
}

func (s *Server) searchKeyword(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kw, err := req.RequireString("keyword")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.org.NotesForKeyword(kw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	views := make([]noteView, len(notes))
	for i, m := range notes {
		views[i] = viewOf(m)
	}
	out, _ := json.MarshalIndent(views, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topics, err := s.org.Topics()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(topics, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listKeywords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts, err := s.org.KeywordCounts()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	view := make(map[string]int, len(counts))
	for _, c := range counts {
		view[c.Keyword] = c.Notes
	}
	out, _ := json.MarshalIndent(view, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
