package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seelevollerei/skland-signin/bot"
	"github.com/seelevollerei/skland-signin/internal/config"
	"github.com/seelevollerei/skland-signin/skland"
)

func newSignInCmd() *cobra.Command {
	var grant string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Perform one full sign-in for a grant and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := newLogger(cfg.LogLevel)

			client := skland.New(
				skland.WithMaxRetries(cfg.MaxRetries),
				skland.WithAttemptTimeout(cfg.AttemptTimeout),
				skland.WithConcurrency(cfg.Concurrency),
				skland.WithLogger(log),
			)
			defer client.Close()

			results, nickname, err := client.DoFullSignIn(cmd.Context(), grant)
			if err != nil {
				return err
			}
			fmt.Println(bot.FormatStatus(results, nickname))
			return nil
		},
	}
	cmd.Flags().StringVar(&grant, "grant", "", "long-lived grant token (from the Hypergryph account portal)")
	_ = cmd.MarkFlagRequired("grant")
	return cmd
}
