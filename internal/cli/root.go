package cli

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersion is called from main to inject build-time version info.
func SetVersion(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
}

// newFs returns the file system commands operate on. Tests swap it.
var newFs = func() afero.Fs { return afero.NewOsFs() }

var rootCmd = &cobra.Command{
	Use:   "demobundle",
	Short: "Assemble curated demos into a release bundle",
	Long: `demobundle copies a curated list of demo directories into one bundle
directory and writes a requirements.txt manifest next to them.

Typical release step:
  demobundle build --primary-requirement "ayb==1.4.0" --secondary-requirement "ayb-sdk==0.9.2"

Then optionally:
  demobundle verify
  demobundle publish --backend s3 --prefix demos/v1.4.0`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Path to demobundle.toml settings file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// flagValues collects the named string flags that were set explicitly, in the
// map form config.Load and config.ResolveRequirements take.
func flagValues(cmd *cobra.Command, names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, name := range names {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		out[name] = f.Value.String()
	}
	return out
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
