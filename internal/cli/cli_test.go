package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag on the command tree to its default. The
// commands are package-level, so flag state otherwise leaks between tests.
func resetFlags(c *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// isolateEnv clears every variable the CLI reads and disables color.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "DEMOBUNDLE_") || strings.HasPrefix(name, "INPUT_") {
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
	t.Setenv("NO_COLOR", "1")
}

// execute runs the root command with args and returns captured stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	defer SetVersion("dev", "none", "unknown")

	assert.Equal(t, "1.2.3", buildVersion)
	assert.Equal(t, "abc123", buildCommit)
	assert.Equal(t, "2026-01-01", buildDate)
}

func TestVersionCommand(t *testing.T) {
	SetVersion("0.1.0", "deadbeef", "2026-02-07")
	defer SetVersion("dev", "none", "unknown")

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "demobundle 0.1.0")
	assert.Contains(t, out, "deadbeef")
}

func TestVersionCommandJSON(t *testing.T) {
	SetVersion("0.1.0", "deadbeef", "2026-02-07")
	defer SetVersion("dev", "none", "unknown")

	out, _, err := execute(t, "version", "--json")
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "0.1.0", got["version"])
	assert.Equal(t, "deadbeef", got["commit"])
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"build", "verify", "publish", "config", "version"} {
		assert.True(t, names[want], "expected %q subcommand", want)
	}
}

func TestHelpDoesNotError(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "demobundle")
}

func TestConfigCommandProducesTOML(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "demobundle.toml")
	require.NoError(t, os.WriteFile(path, []byte("[bundle]\ndest_dir = \"out/bundle\"\n"), 0o644))

	out, _, err := execute(t, "config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[bundle]")
	assert.Contains(t, out, "out/bundle")
}

func TestConfigSetGetRoundTrip(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "demobundle.toml")

	out, _, err := execute(t, "config", "set", "bundle.source_dir", "demos", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "bundle.source_dir = demos")

	out, _, err = execute(t, "config", "get", "bundle.source_dir", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "demos\n", out)

	_, _, err = execute(t, "config", "set", "bundle.nope", "x", "--config", path)
	assert.ErrorContains(t, err, "unknown configuration key")
}

func TestConfigInit(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "demobundle.toml")

	_, _, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[bundle]")

	_, _, err = execute(t, "config", "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = execute(t, "config", "init", "--config", path, "--force")
	assert.NoError(t, err)
}
