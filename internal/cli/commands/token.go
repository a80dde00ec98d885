package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seometa/seometa/internal/cli/config"
	"github.com/seometa/seometa/internal/web"
)

var tokenTTL time.Duration

// NewTokenCommand creates the token command
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token [subject]",
		Short: "Mint an access token for record-editing clients",
		Args:  cobra.ExactArgs(1),
		RunE:  runToken,
	}
	cmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (default from config)")
	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Auth.Secret == "" {
		return fmt.Errorf("no auth secret configured (set auth.secret in seometa.yml)")
	}

	ttl := cfg.Auth.TokenTTL()
	if tokenTTL > 0 {
		ttl = tokenTTL
	}

	token, err := web.NewTokenAuth(cfg.Auth.Secret, ttl).GenerateToken(args[0])
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}
	fmt.Println(token)
	return nil
}
