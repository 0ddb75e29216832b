package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTokenCommand(g *globals) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token for --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			if cfg.Client.UserID == "" {
				return fmt.Errorf("no user configured: pass --user or set MINDMAP_USER_ID")
			}
			signer, err := g.signer(cfg)
			if err != nil {
				return err
			}
			token, err := signer.Sign(cfg.Client.UserID, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	return cmd
}
