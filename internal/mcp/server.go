package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nick-dorsch/taskheap/internal/input"
	"github.com/nick-dorsch/taskheap/internal/session"
	"github.com/pkg/errors"
)

const sessionDescription = "Session ID (defaults to 'default')."

// NewServer creates a new MCP server.
func NewServer(sessions *session.Manager, version string) *server.MCPServer {
	s := server.NewMCPServer("taskheap", version)

	// Session Management
	s.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new task queue with its own capacity and criteria. Returns the session ID."),
		mcp.WithNumber("capacity", mcp.Description("Maximum number of queued tasks (> 0)"), mcp.Required()),
		mcp.WithString("criteria", mcp.Description("Ordering criteria (time|title|level|none)")),
	), createSessionHandler(sessions))

	s.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("Delete a session and its queue. The default session cannot be deleted."),
		mcp.WithString("session_id", mcp.Description("Session ID"), mcp.Required()),
	), deleteSessionHandler(sessions))

	s.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all sessions with their size, capacity and criteria."),
	), listSessionsHandler(sessions))

	s.AddTool(mcp.NewTool("queue_status",
		mcp.WithDescription("Get the size, capacity and criteria of a session's queue."),
		mcp.WithString("session_id", mcp.Description(sessionDescription)),
	), queueStatusHandler(sessions))

	// Queue Operations
	s.AddTool(mcp.NewTool("enqueue_task",
		mcp.WithDescription("Add a task to the queue. Fails when the queue is full."),
		mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Task description"), mcp.Required()),
		mcp.WithNumber("estimated_minutes", mcp.Description("Estimated minutes to complete (>= 0)"), mcp.Required()),
		mcp.WithString("priority_level", mcp.Description("Priority level (optional|low|medium|high|urgent, defaults to optional)")),
		mcp.WithString("session_id", mcp.Description(sessionDescription)),
	), enqueueTaskHandler(sessions))

	s.AddTool(mcp.NewTool("peek_best",
		mcp.WithDescription("Get the highest priority task without removing it."),
		mcp.WithString("session_id", mcp.Description(sessionDescription)),
	), peekBestHandler(sessions))

	s.AddTool(mcp.NewTool("dequeue_task",
		mcp.WithDescription("Remove and return the highest priority task."),
		mcp.WithString("session_id", mcp.Description(sessionDescription)),
	), dequeueTaskHandler(sessions, false))

	s.AddTool(mcp.NewTool("complete_next",
		mcp.WithDescription("Remove the highest priority task and return it marked as completed."),
		mcp.WithString("session_id", mcp.Description(sessionDescription)),
	), dequeueTaskHandler(sessions, true))

	s.AddTool(mcp.NewTool("reprioritize",
		mcp.WithDescription("Switch the ordering criteria and rebuild the queue order."),
		mcp.WithString("criteria", mcp.Description("New criteria (time|title|level|none)"), mcp.Required()),
		mcp.WithString("session_id", mcp.Description(sessionDescription)),
	), reprioritizeHandler(sessions))

	s.AddTool(mcp.NewTool("get_heap",
		mcp.WithDescription("Get every queue slot in heap order. Empty slots are null."),
		mcp.WithString("session_id", mcp.Description(sessionDescription)),
	), getHeapHandler(sessions))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// minutesArg reads estimated_minutes. A missing value yields -1 so BuildTask
// rejects it.
func minutesArg(request mcp.CallToolRequest) (int, error) {
	switch v := request.GetArguments()["estimated_minutes"].(type) {
	case nil:
		return -1, nil
	case float64:
		return input.WholeMinutes(v)
	case int:
		return v, nil
	case string:
		return input.ParseMinutes(v)
	default:
		return 0, errors.Wrapf(input.ErrInvalidMinutes, "unsupported value %v", v)
	}
}

func createSessionHandler(sessions *session.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		capacity := mcp.ParseInt(request, "capacity", 0)
		criteria, err := input.ParseSessionCriteria(mcp.ParseString(request, "criteria", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		id, err := sessions.Create(ctx, capacity, criteria)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(map[string]string{"session_id": id})
	}
}

func deleteSessionHandler(sessions *session.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "session_id", "")
		if err := sessions.Delete(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Session '%s' deleted", id)), nil
	}
}

func listSessionsHandler(sessions *session.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]any{"sessions": sessions.List()})
	}
}

func queueStatusHandler(sessions *session.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status, err := sessions.Status(mcp.ParseString(request, "session_id", session.DefaultID))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(status)
	}
}

func enqueueTaskHandler(sessions *session.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := mcp.ParseString(request, "session_id", session.DefaultID)

		minutes, err := minutesArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		t, err := input.BuildTask(
			mcp.ParseString(request, "title", ""),
			mcp.ParseString(request, "description", ""),
			minutes,
			mcp.ParseString(request, "priority_level", ""),
		)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := sessions.Enqueue(ctx, sessionID, t); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		status, err := sessions.Status(sessionID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Task '%s' enqueued in session '%s' (%d/%d).", t.Title, status.ID, status.Size, status.Capacity)), nil
	}
}

func peekBestHandler(sessions *session.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t, err := sessions.PeekBest(mcp.ParseString(request, "session_id", session.DefaultID))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func dequeueTaskHandler(sessions *session.Manager, complete bool) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t, err := sessions.Dequeue(ctx, mcp.ParseString(request, "session_id", session.DefaultID))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if complete {
			t.MarkCompleted()
		}
		return jsonResult(t)
	}
}

func reprioritizeHandler(sessions *session.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := mcp.ParseString(request, "session_id", session.DefaultID)

		criteria, err := input.ParseCriteria(mcp.ParseString(request, "criteria", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := sessions.Reprioritize(ctx, sessionID, criteria); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Session '%s' now ordered by %s", sessionID, criteria)), nil
	}
}

func getHeapHandler(sessions *session.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slots, err := sessions.Snapshot(mcp.ParseString(request, "session_id", session.DefaultID))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{"slots": slots})
	}
}
