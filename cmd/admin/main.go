package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/sosusa-backend/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app carries what every subcommand needs once the database is open.
type app struct {
	db         *gorm.DB
	out        io.Writer
	output     string
	moderation *services.ModerationService
	admin      *services.AdminService
}

func openDatabase() (*gorm.DB, error) {
	if err := database.Connect(config.Load()); err != nil {
		return nil, err
	}
	return database.DB, nil
}

func newRootCmd(open func() (*gorm.DB, error), out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "sosusa-admin",
		Short:         "Sosusa admin CLI - moderate reports, categories and users",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.output != "text" && a.output != "json" {
				return fmt.Errorf("unknown output format %q", a.output)
			}
			db, err := open()
			if err != nil {
				return err
			}
			a.db = db
			a.moderation = services.NewModerationService(db)
			a.admin = services.NewAdminService(db)
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.output, "output", "text", "Output format: text or json")

	root.AddCommand(
		a.migrateCmd(),
		a.reportsCmd(),
		a.categoriesCmd(),
		a.requestsCmd(),
		a.usersCmd(),
	)
	return root
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(a.db); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "migrated")
			return nil
		},
	}
}

func main() {
	logging.Setup()

	if err := newRootCmd(openDatabase, os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
