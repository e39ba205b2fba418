package cmd

import (
	"context"
	"fmt"

	"github.com/dejay09121/Noteapp/internal/app"
	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/internal/search"
	"github.com/dejay09121/Noteapp/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

type (
	// ListInput 列出或搜索笔记
	ListInput struct {
		Search string `json:"search,omitempty" jsonschema:"Case-insensitive text matched against title and content; empty lists all notes"`
	}

	// ListOutput 按创建时间倒序的笔记
	ListOutput struct {
		Notes []*domain.Note `json:"notes"`
		Term  string         `json:"term,omitempty"`
	}

	// CreateInput 新建笔记
	CreateInput struct {
		Title    string `json:"title" jsonschema:"Note title"`
		Content  string `json:"content,omitempty" jsonschema:"Note body"`
		MediaURL string `json:"mediaUrl,omitempty" jsonschema:"Image or .mp4 URL (optional)"`
	}

	// UpdateInput 更新笔记，字段整体覆盖
	UpdateInput struct {
		ID       string `json:"id" jsonschema:"Note id"`
		Title    string `json:"title" jsonschema:"New title"`
		Content  string `json:"content,omitempty" jsonschema:"New body"`
		MediaURL string `json:"mediaUrl,omitempty" jsonschema:"New media URL; empty removes it"`
	}

	// NoteOutput 单条笔记
	NoteOutput struct {
		Note *domain.Note `json:"note"`
	}

	// DeleteInput 批量删除
	DeleteInput struct {
		IDs []string `json:"ids" jsonschema:"Ids of the notes to delete"`
	}

	// DeleteOutput 删除结果
	DeleteOutput struct {
		Deleted   int `json:"deleted"`
		Remaining int `json:"remaining"`
	}
)

// noteTools MCP 工具处理器
// 每次 list_notes 视为列表重新可见，先刷新再读本地集合
type noteTools struct {
	sync service.SyncService
}

func (t *noteTools) list(ctx context.Context, req *mcp.CallToolRequest, in ListInput) (*mcp.CallToolResult, ListOutput, error) {
	if err := t.sync.FocusRegained(ctx); err != nil {
		return &mcp.CallToolResult{IsError: true}, ListOutput{}, err
	}
	notes := search.Apply(in.Search, t.sync.Store().Notes())
	return nil, ListOutput{Notes: notes, Term: search.Normalize(in.Search)}, nil
}

func (t *noteTools) create(ctx context.Context, req *mcp.CallToolRequest, in CreateInput) (*mcp.CallToolResult, NoteOutput, error) {
	note, err := t.sync.Create(ctx, &domain.NoteInput{Title: in.Title, Content: in.Content, MediaURL: in.MediaURL})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, NoteOutput{}, err
	}
	return nil, NoteOutput{Note: note}, nil
}

func (t *noteTools) update(ctx context.Context, req *mcp.CallToolRequest, in UpdateInput) (*mcp.CallToolResult, NoteOutput, error) {
	if in.ID == "" {
		return &mcp.CallToolResult{IsError: true}, NoteOutput{}, fmt.Errorf("id is required")
	}
	note, err := t.sync.Update(ctx, in.ID, &domain.NoteInput{Title: in.Title, Content: in.Content, MediaURL: in.MediaURL})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, NoteOutput{}, err
	}
	return nil, NoteOutput{Note: note}, nil
}

func (t *noteTools) delete(ctx context.Context, req *mcp.CallToolRequest, in DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	before := t.sync.Store().Len()
	if err := t.sync.DeleteBatch(ctx, in.IDs); err != nil {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{}, err
	}
	after := t.sync.Store().Len()
	return nil, DeleteOutput{Deleted: max(before-after, 0), Remaining: after}, nil
}

// newMCPServer 注册笔记工具
func newMCPServer(sync service.SyncService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "noteapp",
		Version: app.Version,
	}, nil)

	t := &noteTools{sync: sync}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_notes",
		Description: "List the signed-in user's notes, newest first. Optional search filters by title or content, case-insensitive.",
	}, t.list)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_note",
		Description: "Create a note with a title, body and optional image or .mp4 URL.",
	}, t.create)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_note",
		Description: "Replace the title, body and media URL of an existing note.",
	}, t.update)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_notes",
		Description: "Delete notes by id. An empty list does nothing.",
	}, t.delete)
	return server
}

func init() {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the notes collection to MCP clients over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			if _, err := requireUser(ctx, c); err != nil {
				return err
			}
			if err := c.Sync.Start(ctx); err != nil {
				return err
			}
			tasks := startClientTasks(ctx, c)
			defer tasks.Stop()

			if err := newMCPServer(c.Sync).Run(ctx, &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("error running server: %w", err)
			}
			return nil
		},
	}
	rootCmd.AddCommand(mcpCmd)
}
