package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/config"
	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/middleware"
)

func newRootCmd() *cobra.Command {
	var (
		email   string
		isAdmin bool
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed API token",
		Long:  "Mint a token signed with JWT_SIGNING_KEY, usable as a Bearer credential against the jobs API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return errors.Wrap(err, "unable to load config")
			}
			token, err := middleware.NewToken(cfg.JwtSigningKey, email, isAdmin, ttl)
			if err != nil {
				return errors.Wrap(err, "unable to sign token")
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email claim of the token")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "grant admin rights")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
