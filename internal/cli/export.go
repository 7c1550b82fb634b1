package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cquiz-service/internal/app"
	"cquiz-service/internal/config"
	"cquiz-service/internal/export"
	"github.com/spf13/cobra"
)

// NewExportCmd writes every stored result as CSV.
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all quiz results as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), *configPath, out, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&out, "out", "", `output file; "-" for stdout, empty for the dated default name`)
	return cmd
}

func runExport(ctx context.Context, configPath, out string, stdout io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	results, err := app.NewResultService(st.results, log).ListAll(ctx, app.ResultQuery{})
	if err != nil {
		return err
	}

	if out == "-" {
		return export.WriteCSV(stdout, results)
	}
	if out == "" {
		out = export.FileName(time.Now())
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, results); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info("results exported", "file", out, "count", len(results))
	return nil
}

// NewPurgeCmd deletes results for one user or for everyone.
func NewPurgeCmd(configPath *string) *cobra.Command {
	var (
		email string
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete stored quiz results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (email == "") == !all {
				return fmt.Errorf("exactly one of --email or --all is required")
			}
			return runPurge(cmd.Context(), *configPath, email, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "delete results of this user")
	cmd.Flags().BoolVar(&all, "all", false, "delete every result")
	return cmd
}

func runPurge(ctx context.Context, configPath, email string, stdout io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	results := app.NewResultService(st.results, log)
	var n int
	if email != "" {
		n, err = results.DeleteByUser(ctx, email)
	} else {
		n, err = results.DeleteAll(ctx)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "deleted %d result(s)\n", n)
	return err
}
