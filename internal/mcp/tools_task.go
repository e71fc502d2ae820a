package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"corkboard/internal/domain"
	"corkboard/internal/service"
)

func (s *Server) registerTaskTools() {
	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List the case to-do list, open tasks first"),
	), s.handleListTasks)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the to-do list"),
		mcp.WithString("text", mcp.Description("Task text"), mcp.Required()),
		mcp.WithString("priority",
			mcp.Description("high, medium or low (default medium)"),
			mcp.Enum(string(domain.PriorityHigh), string(domain.PriorityMedium), string(domain.PriorityLow)),
		),
	), s.handleAddTask)

	s.mcp.AddTool(mcp.NewTool("toggle_task",
		mcp.WithDescription("Mark a task done, or open again"),
		mcp.WithNumber("taskId", mcp.Description("Task ID"), mcp.Required()),
	), s.handleToggleTask)

	s.mcp.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Remove a task from the list"),
		mcp.WithNumber("taskId", mcp.Description("Task ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteTask)
}

func (s *Server) handleListTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	open, done := service.Partition(tasks)
	return jsonResult(map[string]any{"open": nonNil(open), "done": nonNil(done)})
}

func (s *Server) handleAddTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, _ := args["text"].(string)
	t, err := s.tasks.Add(ctx, text, domain.Priority(getString(args, "priority", "")))
	if err != nil {
		return nil, err
	}
	return jsonResult(t)
}

func (s *Server) handleToggleTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireFloat(req.GetArguments(), "taskId")
	if err != nil {
		return nil, err
	}
	t, err := s.tasks.Toggle(ctx, int64(id))
	if err != nil {
		return nil, err
	}
	return jsonResult(t)
}

func (s *Server) handleDeleteTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireFloat(req.GetArguments(), "taskId")
	if err != nil {
		return nil, err
	}
	if err := s.tasks.Delete(ctx, int64(id)); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Task %d deleted", int64(id))), nil
}

func nonNil(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return []domain.Task{}
	}
	return tasks
}
