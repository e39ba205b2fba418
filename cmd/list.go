package cmd

import (
	"fmt"

	"github.com/dejay09121/Noteapp/internal/service"

	"github.com/bytedance/sonic"
	"github.com/gookit/goutil/dump"
	"github.com/spf13/cobra"
)

type listFlags struct {
	search string
	json   bool
	debug  bool
	width  int
}

func init() {
	flags := new(listFlags)

	listCmd := &cobra.Command{
		Use:   "list [--search term]",
		Short: "List notes, newest first",
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

			view := service.NewNotesView(c.Sync.Store(), c.Sync.Selection(), nil)
			view.SetSearchTerm(flags.search)
			results := view.Results()

			out := cmd.OutOrStdout()
			switch {
			case flags.debug:
				dump.P(results)
				return nil
			case flags.json:
				b, err := sonic.ConfigStd.MarshalIndent(results, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}

			if view.KeywordNotFound() {
				fmt.Fprintln(out, mutedStyle.Render(keywordNotFound))
				return nil
			}
			for i, n := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, renderNote(n, view.Highlight, flags.width))
			}
			return nil
		},
	}

	rootCmd.AddCommand(listCmd)
	fs := listCmd.Flags()
	fs.StringVarP(&flags.search, "search", "s", "", "filter by title or content (case-insensitive)")
	fs.BoolVar(&flags.json, "json", false, "print notes as JSON")
	fs.BoolVar(&flags.debug, "debug", false, "dump notes with field types")
	fs.IntVarP(&flags.width, "width", "w", 80, "truncate lines to this display width, 0 disables")
}
