/*
Copyright © 2026 The GiziSehat Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gizisehat/gizi/internal/iodb"
	"github.com/gizisehat/gizi/internal/ioschema"
	"github.com/gizisehat/gizi/internal/iostore"
	"github.com/gizisehat/gizi/pkg/config"
	"github.com/gnames/gn"
	"github.com/gnames/gnlib"
	"github.com/spf13/cobra"
)

// getCreateCmd returns the create command.
func getCreateCmd() *cobra.Command {
	var forceCreate bool

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create storage schema",
		Long: `Create tables for children, measurements, intake logs and
assistant sessions.

With the SQLite driver the database file is created if missing. With
the PostgreSQL driver existing tables are dropped after confirmation,
then the schema is created by GORM AutoMigrate.

Use --force to drop existing PostgreSQL tables without confirmation.

Examples:
  gizi create
  gizi create --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(forceCreate)
		},
	}

	createCmd.Flags().BoolVarP(&forceCreate, "force", "f",
		false, "drop existing tables without confirmation")

	return createCmd
}

func runCreate(force bool) error {
	ctx := context.Background()

	if cfg.Database.Driver != "postgres" {
		repo, err := iostore.New(ctx, cfg)
		if err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		defer repo.Close()
		if err = repo.Init(ctx); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
		gn.Info("Storage is ready: <em>%s</em>", storageName(cfg))
		return nil
	}

	op := iodb.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		gnlib.PrintUserMessage(err)
		return err
	}
	defer op.Close()

	gn.Info("Connected to database: %s@%s:%d/%s",
		cfg.Database.User, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database)

	hasTables, err := op.HasTables(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if hasTables && !force {
		gn.Warn("Database contains existing tables.")
		gn.Warn("Creating schema will drop ALL existing tables and data.")
		ok, err := confirm("Do you want to continue? (yes/no): ")
		if err != nil {
			gn.Warn("Failed to read user input")
			return err
		}
		if !ok {
			gn.Info("Aborted. No changes made.")
			return nil
		}
	}
	if hasTables {
		gn.Info("Dropping all existing tables...")
	}

	sm := ioschema.NewManager(op)
	if err := sm.Create(ctx, hasTables); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("Database schema creation complete!")
	gn.Info("Next steps:")
	gn.Info("  - Run 'gizi child add' to register a child")
	gn.Info("  - Run 'gizi import FILE' to load existing records")
	return nil
}

func confirm(question string) (bool, error) {
	fmt.Print(question)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}

func storageName(cfg *config.Config) string {
	switch cfg.Database.Driver {
	case "memory":
		return "in-memory"
	case "sqlite":
		if cfg.Database.Path != "" {
			return cfg.Database.Path
		}
		return config.SQLitePath(cfg.HomeDir)
	default:
		return fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User,
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	}
}
