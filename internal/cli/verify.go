package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/allyourbase/demobundle/internal/bundle"
	"github.com/allyourbase/demobundle/internal/cli/ui"
	"github.com/allyourbase/demobundle/internal/demolist"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the bundle mirrors the source demos byte for byte",
	Long: `Compare every file of <source>/<demo> with <dest>/<demo> for each demo
in the demo list, and check that requirements.txt exists. Exits non-zero
when anything is missing or differs. Extra files in the bundle are ignored.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	addBundleFlags(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fsys := newFs()

	demos, err := demolist.Load(fsys, cfg.Bundle.DemoList)
	if err != nil {
		return err
	}
	mismatches, err := bundle.Verify(fsys, demos, cfg.Bundle.SourceDir, cfg.Bundle.DestDir)
	if err != nil {
		return err
	}
	manifest := filepath.Join(cfg.Bundle.DestDir, bundle.ManifestName)
	manifestOK, err := afero.Exists(fsys, manifest)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput(cmd) {
		if err := json.NewEncoder(out).Encode(map[string]any{
			"demos":      len(demos),
			"mismatches": mismatches,
			"manifest":   manifestOK,
		}); err != nil {
			return err
		}
	} else {
		useColor := ui.ColorEnabled()
		warn := ui.Paint(ui.StyleWarning, ui.SymbolWarning, useColor)
		for _, m := range mismatches {
			fmt.Fprintf(out, "  %s %s/%s: %s\n", warn, m.Demo, m.Path, m.Reason)
		}
		if !manifestOK {
			fmt.Fprintf(out, "  %s %s: missing\n", warn, manifest)
		}
		if len(mismatches) == 0 && manifestOK {
			fmt.Fprintf(out, "  %s %d demos match the source\n", ui.Paint(ui.StyleSuccess, ui.SymbolCheck, useColor), len(demos))
		}
	}

	switch {
	case len(mismatches) > 0:
		return fmt.Errorf("bundle does not mirror the source: %d file(s) differ", len(mismatches))
	case !manifestOK:
		return errors.New("bundle has no " + bundle.ManifestName)
	}
	return nil
}
