package cmd

import (
	"fmt"

	pkgapp "github.com/dejay09121/Noteapp/pkg/app"

	"github.com/spf13/cobra"
)

type tokenFlags struct {
	uid      string
	nickname string
	save     bool
	logout   bool
}

func init() {
	flags := new(tokenFlags)

	tokenCmd := &cobra.Command{
		Use:   "token --uid UID [--nickname N] [--save]",
		Short: "Issue a login token signed with security.auth-token-key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if flags.logout {
				cfg.Client.Token = ""
				return cfg.Save()
			}
			if flags.uid == "" {
				return fmt.Errorf("--uid is required")
			}

			tm := pkgapp.NewTokenManager(pkgapp.TokenConfig{
				SecretKey: cfg.Security.AuthTokenKey,
				Expiry:    cfg.GetTokenExpiry(),
			})
			token, err := tm.Generate(flags.uid, flags.nickname)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)

			if flags.save {
				cfg.Client.Token = token
				return cfg.Save()
			}
			return nil
		},
	}

	rootCmd.AddCommand(tokenCmd)
	fs := tokenCmd.Flags()
	fs.StringVar(&flags.uid, "uid", "", "user id")
	fs.StringVar(&flags.nickname, "nickname", "", "display name")
	fs.BoolVar(&flags.save, "save", false, "store the token as client.token (log in)")
	fs.BoolVar(&flags.logout, "logout", false, "clear client.token")
}
