package cmd

import (
	"context"
	"fmt"

	"github.com/dejay09121/Noteapp/internal/app"
	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/pkg/code"
	"github.com/dejay09121/Noteapp/pkg/diff"
	"github.com/dejay09121/Noteapp/pkg/fileurl"

	"github.com/spf13/cobra"
)

type noteFlags struct {
	title   string
	content string
	media   string
	diff    bool
}

// resolveMedia media 为本地文件时先上传，返回可访问的地址
func resolveMedia(ctx context.Context, c *app.Client, media string) (string, error) {
	if media == "" || !fileurl.IsExist(media) {
		return media, nil
	}
	return c.Media.Upload(ctx, media)
}

func init() {
	createFlags := new(noteFlags)
	createCmd := &cobra.Command{
		Use:   "create --title T [--content C] [--media URL|FILE]",
		Short: "Create a note",
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
			media, err := resolveMedia(ctx, c, createFlags.media)
			if err != nil {
				return err
			}
			note, err := c.Sync.Create(ctx, &domain.NoteInput{
				Title:    createFlags.title,
				Content:  createFlags.content,
				MediaURL: media,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), note.ID)
			return nil
		},
	}
	fs := createCmd.Flags()
	fs.StringVarP(&createFlags.title, "title", "t", "", "note title")
	fs.StringVar(&createFlags.content, "content", "", "note body")
	fs.StringVarP(&createFlags.media, "media", "m", "", "media URL, or a local file to upload first")

	updateFlags := new(noteFlags)
	updateCmd := &cobra.Command{
		Use:   "update <id> [--title T] [--content C] [--media URL|FILE] [--diff]",
		Short: "Update a note; unset flags keep the current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := openClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close(ctx)

			if err := loadNotes(ctx, c); err != nil {
				return err
			}
			var current *domain.Note
			for _, n := range c.Sync.Store().Notes() {
				if n.ID == args[0] {
					current = n
					break
				}
			}
			if current == nil {
				return code.ErrorNoteNotFound
			}

			in := &domain.NoteInput{Title: current.Title, Content: current.Content, MediaURL: current.MediaURL}
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = updateFlags.title
			}
			if flags.Changed("content") {
				in.Content = updateFlags.content
			}
			if flags.Changed("media") {
				if in.MediaURL, err = resolveMedia(ctx, c, updateFlags.media); err != nil {
					return err
				}
			}

			note, err := c.Sync.Update(ctx, current.ID, in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if updateFlags.diff {
				stat := diff.Count(diff.Lines(current.Content, note.Content))
				fmt.Fprint(out, diff.Unified(current.Content, note.Content))
				fmt.Fprintf(out, "%d insertions(+), %d deletions(-)\n", stat.Inserted, stat.Deleted)
				return nil
			}
			fmt.Fprintln(out, note.ID)
			return nil
		},
	}
	fs = updateCmd.Flags()
	fs.StringVarP(&updateFlags.title, "title", "t", "", "new title")
	fs.StringVar(&updateFlags.content, "content", "", "new body")
	fs.StringVarP(&updateFlags.media, "media", "m", "", "new media URL or local file; empty removes it")
	fs.BoolVar(&updateFlags.diff, "diff", false, "print a line diff of the body")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete notes by id",
		Args:  cobra.MinimumNArgs(1),
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
			// 走删除模式：选中后提交，成功后选择清空并退出删除模式
			sel := c.Sync.Selection()
			sel.SetActive(true)
			for _, id := range args {
				if !sel.IsSelected(id) {
					sel.Toggle(id)
				}
			}
			if err := c.Sync.DeleteSelected(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d note(s), %d remaining\n", len(args), c.Sync.Store().Len())
			return nil
		},
	}

	rootCmd.AddCommand(createCmd, updateCmd, deleteCmd)
}
