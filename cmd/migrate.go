package cmd

import (
	"github.com/spf13/cobra"

	"quizzit/config"
	"quizzit/logger"
	"quizzit/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.New("migrate")

		db, err := config.InitDB(cfg)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := store.NewGormStore(db).Migrate(cmd.Context()); err != nil {
			return err
		}
		log.Info("database schema up to date")
		return nil
	},
}
