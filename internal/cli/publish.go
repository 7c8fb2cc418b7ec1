package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/allyourbase/demobundle/internal/cli/ui"
	"github.com/allyourbase/demobundle/internal/config"
	"github.com/allyourbase/demobundle/internal/publish"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload a built bundle to S3-compatible storage or a local directory",
	Long: `Upload every file of the bundle directory (bundle.dest_dir) to the
configured publish backend under an optional key prefix.

Backends:
  local  copy into publish.local_path (default ./published)
  s3     upload to publish.s3_bucket on publish.s3_endpoint

Run 'demobundle build' first; publish never builds.`,
	Example: `  demobundle publish --prefix demos/v1.4.0
  DEMOBUNDLE_PUBLISH_S3_ACCESS_KEY=... DEMOBUNDLE_PUBLISH_S3_SECRET_KEY=... \
    demobundle publish --backend s3 --prefix demos/v1.4.0`,
	Args: cobra.NoArgs,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().String("dest", "", "Bundle directory to upload (default dist/demos)")
	publishCmd.Flags().String("backend", "", "Publish backend: local or s3")
	publishCmd.Flags().String("prefix", "", "Key prefix for uploaded files")
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Publish.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	logger, _ := newLogger(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := newPublishBackend(ctx, &cfg.Publish)
	if err != nil {
		return err
	}

	sum, err := publish.Publish(ctx, newFs(), cfg.Bundle.DestDir, cfg.Publish.Prefix, backend, logger)
	if err != nil {
		return fmt.Errorf("publishing bundle: %w", err)
	}
	logger.Info("bundle published", "backend", cfg.Publish.Backend, "files", sum.Files, "bytes", sum.Bytes)

	out := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		return json.NewEncoder(out).Encode(map[string]any{
			"backend": cfg.Publish.Backend,
			"prefix":  cfg.Publish.Prefix,
			"files":   sum.Files,
			"bytes":   sum.Bytes,
		})
	}
	useColor := ui.ColorEnabled()
	fmt.Fprintf(out, "  %s Published %d files (%d bytes) %s\n",
		ui.Paint(ui.StyleSuccess, ui.SymbolCheck, useColor), sum.Files, sum.Bytes,
		ui.Paint(ui.StyleDim, "via "+cfg.Publish.Backend, useColor))
	return nil
}

func newPublishBackend(ctx context.Context, cfg *config.PublishConfig) (publish.Backend, error) {
	switch cfg.Backend {
	case "s3":
		b, err := publish.NewS3Backend(ctx, cfg.S3())
		if err != nil {
			return nil, fmt.Errorf("connecting to S3: %w", err)
		}
		return b, nil
	default:
		return publish.NewLocalBackend(cfg.LocalPath), nil
	}
}
