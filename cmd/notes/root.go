package main

import (
	"github.com/spf13/cobra"

	notes "github.com/wynotes/go-notes"
)

type rootOptions struct {
	envFiles []string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "notes",
		Short:         "wyNotes admin and article service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files loaded before NOTES_* variables are read")

	cmd.AddCommand(
		newServeCommand(opts),
		newRenderCommand(),
		newTokenCommand(opts),
		newMigrateCommand(opts),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (notes.Config, error) {
	cfg := notes.DefaultConfig()
	if err := notes.LoadEnv(&cfg, o.envFiles...); err != nil {
		return cfg, err
	}
	return cfg, nil
}
