package cli

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User profile commands",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserGetCmd())

	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create or rename your user profile",
		Long: `Create or rename your user profile.

Without --uid (or BINGO_UID) a fresh ID is generated. The ID is saved to the
uid file and used by later commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			uid := cfg.UID
			if uid == "" {
				uid = uuid.NewString()
			}

			req := map[string]string{"uid": uid, "name": name}
			var result User

			if err := client.Post("/api/v1/users", req, &result); err != nil {
				return err
			}

			// Save identity
			if err := cfg.SaveUID(result.UID); err != nil {
				return fmt.Errorf("failed to save uid: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUserGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [uid]",
		Short: "Show a user profile (defaults to your own)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid := cfg.UID
			if len(args) == 1 {
				uid = args[0]
			}
			if uid == "" {
				return fmt.Errorf("no uid: run 'bingo user create' or pass one")
			}

			var result User
			if err := client.Get("/api/v1/users/"+url.PathEscape(uid), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
