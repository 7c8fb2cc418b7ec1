package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/allyourbase/demobundle/internal/bundle"
	"github.com/allyourbase/demobundle/internal/cli/ui"
	"github.com/allyourbase/demobundle/internal/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Copy the configured demos into the bundle and write requirements.txt",
	Long: `Run the bundle pipeline:

  1. load the demo list (a JSON array of directory names)
  2. copy <source>/<demo> to <dest>/<demo> for every demo, overwriting
  3. write <dest>/requirements.txt from the two requirements

Both requirements are required. They can also come from
DEMOBUNDLE_PRIMARY_REQUIREMENT / DEMOBUNDLE_SECONDARY_REQUIREMENT or the
INPUT_PRIMARY_REQUIREMENT / INPUT_SECONDARY_REQUIREMENT action inputs.

The first failure stops the run. Demos copied before it stay in place and
the manifest is not written.`,
	Example: `  demobundle build --primary-requirement "ayb==1.4.0" --secondary-requirement "ayb-sdk==0.9.2"
  demobundle build --demo-list ci/demos.json --source examples --dest dist/demos \
    --primary-requirement "ayb==1.4.0" --secondary-requirement "ayb-sdk==0.9.2"`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("primary-requirement", "", "First manifest line, e.g. \"ayb==1.4.0\" (required)")
	buildCmd.Flags().String("secondary-requirement", "", "Second manifest line, e.g. \"ayb-sdk==0.9.2\" (required)")
	addBundleFlags(buildCmd)
}

// addBundleFlags registers the flags that locate the demo list and both trees.
func addBundleFlags(cmd *cobra.Command) {
	cmd.Flags().String("demo-list", "", "Path to the JSON demo list (default .github/demo-bundle.json)")
	cmd.Flags().String("source", "", "Directory containing one subdirectory per demo (default examples)")
	cmd.Flags().String("dest", "", "Bundle output directory (default dist/demos)")
}

// loadConfig resolves settings for cmd from the settings file, env, and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	flags := flagValues(cmd, "demo-list", "source", "dest", "log-level", "log-format", "backend", "prefix")
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	// Requirements first: a usage error must not touch the file system.
	req, err := config.ResolveRequirements(flagValues(cmd, "primary-requirement", "secondary-requirement"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	logger, lvl := newLogger(stderr, cfg.Logging.Level, cfg.Logging.Format)
	logger = logger.With("run_id", uuid.NewString())

	jsonOut := jsonOutput(cmd)
	isTTY := ui.StderrIsTTY()
	useColor := ui.ColorEnabled()
	sp := ui.NewStepSpinner(stderr, !isTTY)
	if isTTY && lvl.Level() < slog.LevelWarn {
		// Info lines would tear through the spinner.
		lvl.Set(slog.LevelWarn)
	}

	if !jsonOut {
		fmt.Fprintf(stderr, "\n  %s %s\n\n", ui.BrandEmoji, ui.Paint(ui.StyleBoldCyan, "demobundle build", useColor))
	}

	p := bundle.New(newFs(), logger, sp)
	res, err := p.Run(cfg.PipelineOptions(req))
	if err != nil {
		logger.Error("bundle failed", "stage", res.Stage.String(), "copied", len(res.Copied), "error", err)
		return err
	}

	// The bundle is already complete; hashing only feeds the summary.
	var sum string
	files := 0
	if digest, err := bundle.DigestBundle(p.Fs, cfg.Bundle.DestDir, res.Copied); err != nil {
		logger.Warn("could not hash bundle", "dest", cfg.Bundle.DestDir, "error", err)
	} else {
		sum, files = digest.Sum(), len(digest)
	}
	logger.Info("bundle ready", "dest", cfg.Bundle.DestDir, "demos", len(res.Copied), "files", files, "digest", sum)

	out := cmd.OutOrStdout()
	if jsonOut {
		summary := map[string]any{
			"stage":    res.Stage.String(),
			"demos":    res.Copied,
			"dest":     cfg.Bundle.DestDir,
			"manifest": res.ManifestPath,
		}
		if sum != "" {
			summary["files"] = files
			summary["digest"] = sum
		}
		return json.NewEncoder(out).Encode(summary)
	}

	label := func(s string) string { return ui.Paint(ui.StyleBold, fmt.Sprintf("%-10s", s), useColor) }
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s %d copied to %s\n", label("Demos:"), len(res.Copied), cfg.Bundle.DestDir)
	fmt.Fprintf(out, "  %s %s\n", label("Manifest:"), res.ManifestPath)
	if sum != "" {
		fmt.Fprintf(out, "  %s %s\n", label("Digest:"), sum)
	}
	fmt.Fprintf(out, "\n  %s Bundle complete.\n", ui.Paint(ui.StyleSuccess, ui.SymbolCheck, useColor))
	return nil
}
