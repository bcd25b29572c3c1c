package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// waste-service migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the SQL migrations in MIGRATIONS_DIR",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer c.close()

		if !c.pg.Enabled() {
			c.logger.Warn("POSTGRES_DSN is empty; nothing to migrate")
			return nil
		}
		return c.migrate(cmd.Context())
	},
}

// waste-service seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the bootstrap accounts, optionally with demo records",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer c.close()

		if !c.pg.Enabled() {
			c.logger.Warn("POSTGRES_DSN is empty; seeded data will not outlive this process")
		}
		if err := c.auth.Bootstrap(cmd.Context(), c.cfg.Bootstrap); err != nil {
			return err
		}

		demo, _ := cmd.Flags().GetBool("demo")
		if !demo {
			return nil
		}
		records, err := c.waste.GenerateDemoData(cmd.Context(), c.cfg.Bootstrap.AdminEmail)
		if err != nil {
			return err
		}
		c.logger.Info("demo records created", zap.Int("count", len(records)))
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("demo", false, "also log demo waste records for the admin account")
}
