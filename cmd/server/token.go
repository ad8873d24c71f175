package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"hire-match/internal/domain/actor"
	"hire-match/internal/pkg/jwt"
)

var (
	tokenActorID string
	tokenRole    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development bearer token for an actor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		id, err := uuid.Parse(tokenActorID)
		if err != nil {
			return fmt.Errorf("invalid --actor-id: %w", err)
		}
		role, ok := actor.ParseRole(tokenRole)
		if !ok {
			return fmt.Errorf("invalid --role %q: want business or professional", tokenRole)
		}

		svc := jwt.NewHMACService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiresIn)
		token, err := svc.GenerateAccessToken(actor.Actor{ID: id, Role: role})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenActorID, "actor-id", "", "actor UUID")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "", "business or professional")
	_ = tokenCmd.MarkFlagRequired("actor-id")
	_ = tokenCmd.MarkFlagRequired("role")
}
