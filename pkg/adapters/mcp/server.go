package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/chatlist"
	"github.com/aretw0/chatlist/internal/logging"
	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/listsync"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Lists defines what the MCP server needs from the list manager.
type Lists interface {
	Update(ctx context.Context, listID string, cells []domain.Cell, opts ...listsync.UpdateOption) (*domain.Transition[domain.Cell], error)
	Load(ctx context.Context, listID string) (*domain.Snapshot, error)
	List(ctx context.Context) ([]string, error)
	Dispatch(ctx context.Context, event domain.InteractionEvent) error
}

// TransitionResponse is the structured result of the list tools.
type TransitionResponse struct {
	Transition *domain.Transition[domain.Cell] `json:"transition" jsonschema_description:"Operations that move the view to the new snapshot"`
	Counts     domain.TransitionCounts         `json:"counts" jsonschema_description:"Number of operations of each kind"`
}

// UpdateListArgs are the arguments of update_list.
type UpdateListArgs struct {
	ListID     string `json:"list_id"`
	Cells      string `json:"cells"`
	AllUpdated bool   `json:"all_updated,omitempty"`
	ScrollTo   *int   `json:"scroll_to,omitempty"`
}

// GetListArgs are the arguments of get_list.
type GetListArgs struct {
	ListID string `json:"list_id"`
}

// DiffArgs are the arguments of diff_snapshots.
type DiffArgs struct {
	Previous   string `json:"previous"`
	Current    string `json:"current"`
	AllUpdated bool   `json:"all_updated,omitempty"`
}

// SendEventArgs are the arguments of send_event.
type SendEventArgs struct {
	ListID string `json:"list_id"`
	RoomID string `json:"room_id"`
	Type   string `json:"type"`
	Value  bool   `json:"value,omitempty"`
}

// EventResponse acknowledges a dispatched event.
type EventResponse struct {
	Accepted bool `json:"accepted"`
}

// Server wraps the list manager and exposes it as an MCP Server.
type Server struct {
	lists     Lists
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(lists Lists, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		lists:     lists,
		mcpServer: server.NewMCPServer("chatlist-mcp", strings.TrimSpace(chatlist.Version)),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, mostly for tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

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
	// TOOL: update_list
	updateTool := mcp.NewTool("update_list",
		mcp.WithDescription("Replace the content of a chat list and return the row operations from the previous content."),
		mcp.WithString("list_id", mcp.Required(), mcp.Description("Logical list ID")),
		mcp.WithString("cells", mcp.Required(), mcp.Description(`JSON array of cells, e.g. [{"room_id":"1","title":"alice"}]`)),
		mcp.WithBoolean("all_updated", mcp.Description("Report every surviving row as updated")),
		mcp.WithNumber("scroll_to", mcp.Description("Row to anchor the view at after the update")),
		mcp.WithOutputSchema[TransitionResponse](),
	)
	s.mcpServer.AddTool(updateTool, mcp.NewStructuredToolHandler(s.handleUpdateList))

	// TOOL: get_list
	getTool := mcp.NewTool("get_list",
		mcp.WithDescription("Get the last applied snapshot of a chat list."),
		mcp.WithString("list_id", mcp.Required(), mcp.Description("Logical list ID")),
		mcp.WithOutputSchema[domain.Snapshot](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetList))

	// TOOL: diff_snapshots
	diffTool := mcp.NewTool("diff_snapshots",
		mcp.WithDescription("Compute the row operations between two snapshots without storing anything."),
		mcp.WithString("previous", mcp.Required(), mcp.Description("JSON array of cells before")),
		mcp.WithString("current", mcp.Required(), mcp.Description("JSON array of cells after")),
		mcp.WithBoolean("all_updated", mcp.Description("Report every surviving row as updated")),
		mcp.WithOutputSchema[TransitionResponse](),
	)
	s.mcpServer.AddTool(diffTool, mcp.NewStructuredToolHandler(s.handleDiff))

	// TOOL: send_event
	eventTool := mcp.NewTool("send_event",
		mcp.WithDescription("Send a row interaction (peer_selected, set_pinned, set_muted, delete_peer, set_read)."),
		mcp.WithString("list_id", mcp.Required(), mcp.Description("Logical list ID")),
		mcp.WithString("room_id", mcp.Required(), mcp.Description("Room of the row")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Interaction type")),
		mcp.WithBoolean("value", mcp.Description("Flag for pin, mute and read toggles")),
		mcp.WithOutputSchema[EventResponse](),
	)
	s.mcpServer.AddTool(eventTool, mcp.NewStructuredToolHandler(s.handleSendEvent))
}

func parseCells(name, raw string) ([]domain.Cell, error) {
	var cells []domain.Cell
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("%s: invalid cells JSON: %w", name, err)
	}
	return cells, nil
}

func (s *Server) handleUpdateList(ctx context.Context, request mcp.CallToolRequest, args UpdateListArgs) (TransitionResponse, error) {
	cells, err := parseCells("cells", args.Cells)
	if err != nil {
		return TransitionResponse{}, err
	}

	var opts []listsync.UpdateOption
	if args.AllUpdated {
		opts = append(opts, listsync.WithAllUpdated())
	}
	if args.ScrollTo != nil {
		opts = append(opts, listsync.WithScrollTo(*args.ScrollTo))
	}

	tr, err := s.lists.Update(ctx, args.ListID, cells, opts...)
	if err != nil {
		s.logger.Warn("MCP update_list failed", "list_id", args.ListID, "err", err)
		return TransitionResponse{}, fmt.Errorf("update failed: %w", err)
	}
	return TransitionResponse{Transition: tr, Counts: tr.Counts()}, nil
}

func (s *Server) handleGetList(ctx context.Context, request mcp.CallToolRequest, args GetListArgs) (domain.Snapshot, error) {
	snapshot, err := s.lists.Load(ctx, args.ListID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return *snapshot, nil
}

func (s *Server) handleDiff(ctx context.Context, request mcp.CallToolRequest, args DiffArgs) (TransitionResponse, error) {
	previous, err := parseCells("previous", args.Previous)
	if err != nil {
		return TransitionResponse{}, err
	}
	current, err := parseCells("current", args.Current)
	if err != nil {
		return TransitionResponse{}, err
	}

	tr, err := chatlist.Reconcile(previous, current, args.AllUpdated)
	if err != nil {
		return TransitionResponse{}, err
	}
	return TransitionResponse{Transition: tr, Counts: tr.Counts()}, nil
}

func (s *Server) handleSendEvent(ctx context.Context, request mcp.CallToolRequest, args SendEventArgs) (EventResponse, error) {
	err := s.lists.Dispatch(ctx, domain.InteractionEvent{
		Type:   domain.EventType(args.Type),
		ListID: args.ListID,
		RoomID: args.RoomID,
		Value:  args.Value,
	})
	if err != nil {
		return EventResponse{}, err
	}
	return EventResponse{Accepted: true}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: chatlist://lists
	s.mcpServer.AddResource(mcp.NewResource("chatlist://lists", "Known chat lists",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.lists.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "chatlist://lists",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
