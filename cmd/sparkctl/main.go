// Command sparkctl is the operator tool: schema migrations and read-only
// access to stored lessons.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/config"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres"
	"github.com/aliskhannn/lingo-spark-bot/internal/infra/postgres/migrations"
	"github.com/aliskhannn/lingo-spark-bot/internal/logger"
	"github.com/aliskhannn/lingo-spark-bot/internal/storage"
)

// env holds what every subcommand opens.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
	tr     *postgres.Transactor
	store  *storage.ProgressStore
}

func (e *env) Close() {
	e.pool.Close()
	_ = e.logger.Sync()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lg, err := logger.New(cfg)
	if err != nil {
		return nil, err
	}

	dsn, err := cfg.DB.DSN()
	if err != nil {
		return nil, err
	}
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{MaxConns: 2})
	if err != nil {
		return nil, err
	}

	tr := postgres.NewTransactor(pool)
	return &env{
		cfg:    cfg,
		logger: lg,
		pool:   pool,
		tr:     tr,
		store:  storage.NewPostgresProgressStore(pool, tr, cfg.Lesson.HistoryLimit, lg.Named("storage")),
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "sparkctl",
		Short:         "Operate the Lingo Spark bot database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newHistoryCmd(),
		newStatsCmd(),
		newExportCmd(),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		color.New(color.FgHiRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			applied, err := migrations.Migrate(cmd.Context(), e.tr)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				color.New(color.FgWhite).Fprintln(cmd.OutOrStdout(), "✅ schema is up to date")
				return nil
			}
			for _, name := range applied {
				color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✅ applied %s\n", name)
			}
			return nil
		},
	}
}

func requireUser(userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("--user is required")
	}
	return nil
}
