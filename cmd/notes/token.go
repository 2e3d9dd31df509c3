package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wynotes/go-notes/internal/identity"
)

func newTokenCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a session token for a subject",
		Long:  "Issue a session token. The subject is either an account UUID or a login name hashed into a stable account id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			issuer, err := identity.NewIssuer(cfg.Auth.Secret,
				identity.WithTTL(cfg.Auth.TokenTTL),
				identity.WithIssuerName(cfg.Auth.Issuer),
			)
			if err != nil {
				return err
			}
			accountID := identity.AccountID(args[0])
			token, err := issuer.Issue(accountID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "account: %s\ntoken: %s\n", accountID, token)
			return err
		},
	}
}
