package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"blogmodapk-backend/internal/app"
	"blogmodapk-backend/internal/authorization"
	"blogmodapk-backend/internal/seed"
	"blogmodapk-backend/pkg/logger"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
	adminRole     string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(nil)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the super admin, demo accounts and sample catalogue",
	Long: `Seed migrates the schema and inserts the super admin configured through
SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD and SEED_ADMIN_NAME, an editor and a
reader account, and a small catalogue of categories, tags and posts.

Rows that already exist are left alone, so seeding twice is harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *gorm.DB) error {
			return seed.Run(db, seed.Options{
				AdminName:     cfg.SeedAdminName,
				AdminEmail:    cfg.SeedAdminEmail,
				AdminPassword: cfg.SeedAdminPassword,
			})
		})
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a back-office account or promote an existing one",
	Long: `Create an account with the given role. When the email is already
registered the account is promoted instead and, if --password is set, its
password is reset.

Examples:
  blogctl create-admin --email owner@example.com --password s3cret! --role SUPER_ADMIN
  blogctl create-admin --email writer@example.com --role EDITOR`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, ok := authorization.ParseUserRole(adminRole)
		if !ok {
			return fmt.Errorf("invalid role %q", adminRole)
		}
		if strings.TrimSpace(adminEmail) == "" {
			return fmt.Errorf("--email is required")
		}

		return withDatabase(func(db *gorm.DB) error {
			user, created, err := seed.EnsureAccount(db, adminName, adminEmail, adminPassword, role)
			if err != nil {
				return err
			}
			if !created {
				if user, err = seed.PromoteAccount(db, adminEmail, adminPassword, role); err != nil {
					return err
				}
			}

			action := "updated"
			if created {
				action = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (id %d, role %s)\n", action, user.Email, user.ID, user.Role)
			return nil
		})
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "Display name for a new account")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Account email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password; required for a new account")
	createAdminCmd.Flags().StringVar(&adminRole, "role", string(authorization.RoleAdmin), "USER, EDITOR, ADMIN or SUPER_ADMIN")
}

// withDatabase opens and migrates the configured database, runs fn when set
// and closes the connection.
func withDatabase(fn func(db *gorm.DB) error) error {
	db, err := app.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	if err := app.Migrate(db); err != nil {
		return err
	}
	if fn != nil {
		if err := fn(db); err != nil {
			return err
		}
	}
	logger.Info("Done", nil)
	return nil
}
