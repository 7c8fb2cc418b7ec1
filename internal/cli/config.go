package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/allyourbase/demobundle/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print resolved configuration",
	Long: `Load and print the resolved demobundle configuration as TOML.
Shows the result of merging defaults, demobundle.toml, environment variables, and flags.`,
	RunE: runConfig,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long: `Get a specific configuration value by dotted key path.
Examples: bundle.dest_dir, bundle.demo_list, publish.backend`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in demobundle.toml",
	Long: `Set a configuration value in the settings file.
Creates the file if it doesn't exist.
Examples:
  demobundle config set bundle.dest_dir out/demos
  demobundle config set publish.backend s3`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default demobundle.toml",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
}

func configPathFlag(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("config")
	if p == "" {
		return config.DefaultPath
	}
	return p
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
	}
	out, err := cfg.ToTOML()
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	value, err := config.GetValue(cfg, args[0])
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"key": args[0], "value": value})
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if !config.IsValidKey(key) {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	path := configPathFlag(cmd)
	if err := config.SetValue(path, key, value); err != nil {
		return fmt.Errorf("setting config value: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\nWritten to %s\n", key, value, path)

	// Only warn: values are often set one at a time.
	if _, err := config.Load(path, nil); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPathFlag(cmd)
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.GenerateDefault(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
