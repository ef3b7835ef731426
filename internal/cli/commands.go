package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"defecttracker/internal/config"
	"defecttracker/internal/domain"
	impl "defecttracker/internal/service/impl"
	"defecttracker/internal/store"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed the default tags",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, _ []string, cfg config.Config, st *store.Store) error {
			if err := migrate(cmd.Context(), st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema ready (%s)\n", ok(), cfg.DatabaseDriver)
			return nil
		}),
	}
}

func SeedCmd() *cobra.Command {
	var (
		username string
		email    string
		password string
		role     string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate, then create or refresh a user account",
		Long: `Seed makes sure the schema and default tags exist, then upserts one user by
username. The password is taken from --password or, when empty, from SEED_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, _ []string, _ config.Config, st *store.Store) error {
			if password == "" {
				password = os.Getenv("SEED_PASSWORD")
			}
			r := domain.Role(role)
			if r != domain.RoleAdmin && r != domain.RoleUser {
				return fmt.Errorf("%w: role must be admin or user", domain.ErrValidation)
			}
			if err := migrate(cmd.Context(), st); err != nil {
				return err
			}

			hash, err := impl.NewBcryptPasswordService(bcrypt.DefaultCost).Hash(password)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			user := &domain.User{
				Username:     username,
				Email:        email,
				PasswordHash: hash,
				Role:         r,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := st.Users().Upsert(cmd.Context(), user); err != nil {
				return fmt.Errorf("upsert user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s user %s (%s) ready\n", ok(), username, r)
			return nil
		}),
	}
	cmd.Flags().StringVar(&username, "username", "admin", "account username")
	cmd.Flags().StringVar(&email, "email", "admin@example.com", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (default $SEED_PASSWORD)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "admin or user")
	return cmd
}

func TokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <username>",
		Short: "Print an access token for an existing active user",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, cfg config.Config, st *store.Store) error {
			user, err := st.Users().GetByUsername(cmd.Context(), args[0])
			if errors.Is(err, store.ErrRecordNotFound) {
				return fmt.Errorf("user %q not found", args[0])
			}
			if err != nil {
				return err
			}
			if !user.IsActive {
				return domain.ErrUserInactive
			}
			tokens := impl.NewTokenServiceHS256(impl.TokenConfig{
				Issuer:     cfg.Issuer,
				Audience:   cfg.Audience,
				AccessTTL:  cfg.AccessTTL,
				SigningKey: []byte(cfg.JWTSecret),
			})
			tok, err := tokens.Issue(cmd.Context(), user)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return nil
		}),
	}
}

func ok() string { return color.New(color.FgGreen).Sprint("OK") }
