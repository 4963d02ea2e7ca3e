package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/lists"
	"github.com/zfogg/pageshare/pkg/output"
	"github.com/zfogg/pageshare/pkg/post"
)

// cli runs commands against a config directory private to the test.
type cli struct {
	t          *testing.T
	configPath string
}

func newCLI(t *testing.T) *cli {
	t.Setenv("PAGESHARE_LOG_LEVEL", "error")
	return &cli{t: t, configPath: filepath.Join(t.TempDir(), "config.toml")}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func (c *cli) runWithInput(stdin string, args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)
	viper.Reset()
	c.t.Cleanup(viper.Reset)

	var buf bytes.Buffer
	restore := output.SetWriter(&buf)
	defer restore()

	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", c.configPath}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	return c.runWithInput("", args...)
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "pageshare %s", strings.Join(args, " "))
	return out
}

func decode(t *testing.T, out string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestCacheSeedAndStats(t *testing.T) {
	c := newCLI(t)

	var res map[string]interface{}
	decode(t, c.mustRun("cache", "seed", "-n", "30", "--seed", "7", "-o", "json"), &res)
	assert.Equal(t, "stored", res["outcome"])
	assert.EqualValues(t, 30, res["records"])

	metricsFile := filepath.Join(t.TempDir(), "pageshare.prom")
	var stats map[string]interface{}
	decode(t, c.mustRun("cache", "stats", "--metrics-file", metricsFile, "-o", "json"), &stats)
	assert.Equal(t, "file", stats["backend"])
	assert.Equal(t, "pageshare_posts", stats["key"])
	assert.EqualValues(t, 30, stats["records"])
	assert.FileExists(t, metricsFile)

	var posts []post.Post
	decode(t, c.mustRun("cache", "show", "-l", "5", "-o", "json"), &posts)
	assert.Len(t, posts, 5)
}

func TestCacheSaveFromStdinDegrades(t *testing.T) {
	c := newCLI(t)
	posts := post.Fake(300, post.FakeOptions{Seed: 3, MediaBytes: 20 * 1024})
	body, err := json.Marshal(posts)
	require.NoError(t, err)

	out, err := c.runWithInput(string(body), "cache", "save", "-o", "json")
	require.NoError(t, err)

	var res map[string]interface{}
	decode(t, out, &res)
	assert.Equal(t, "degraded", res["outcome"])
	assert.EqualValues(t, 200, res["limit"])
}

func TestCacheSaveRejectsGarbage(t *testing.T) {
	c := newCLI(t)
	_, err := c.runWithInput("not json", "cache", "save")

	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeValidation, cliErr.Type)
}

func TestCacheClear(t *testing.T) {
	c := newCLI(t)
	c.mustRun("cache", "seed", "-n", "3")
	c.mustRun("cache", "clear", "--force")

	var stats map[string]interface{}
	decode(t, c.mustRun("cache", "stats", "-o", "json"), &stats)
	assert.EqualValues(t, 0, stats["records"])
}

func TestSetCommands(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("--as", "alice", "mute", "add", "bob")
	assert.Contains(t, out, "Added bob to your muted users")

	out = c.mustRun("--as", "alice", "mute", "add", "bob")
	assert.Contains(t, out, "already")

	c.mustRun("--as", "alice", "mute", "add", "carol")

	var muted []string
	decode(t, c.mustRun("--as", "alice", "mute", "list", "-o", "json"), &muted)
	assert.Equal(t, []string{"bob", "carol"}, muted)

	c.mustRun("--as", "alice", "mute", "remove", "bob")
	_, err := c.run("--as", "alice", "mute", "remove", "bob")
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeNotFound, cliErr.Type)

	_, err = c.run("--as", "alice", "block", "add", "alice")
	assert.ErrorIs(t, err, lists.ErrSelf)
}

func TestSetToggle(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("--as", "alice", "bookmark", "toggle", "post-9")
	assert.Contains(t, out, "Added post-9")
	out = c.mustRun("--as", "alice", "bookmark", "toggle", "post-9")
	assert.Contains(t, out, "Removed post-9")

	var marks []string
	decode(t, c.mustRun("--as", "alice", "bookmark", "list", "-o", "json"), &marks)
	assert.Empty(t, marks)
}

func TestListCommandsOnFullStore(t *testing.T) {
	c := newCLI(t)
	t.Setenv("PAGESHARE_STORE_QUOTA_BYTES", "8")

	out, err := c.run("--as", "alice", "bookmark", "add", "post-1")
	assert.ErrorIs(t, err, lists.ErrNotStored)
	assert.NotContains(t, out, "Added")

	_, err = c.run("search", "recent", "add", "AAPL", "-t", "stock")
	assert.ErrorIs(t, err, lists.ErrNotStored)

	_, err = c.run("watchlist", "add", "aapl")
	assert.ErrorIs(t, err, lists.ErrNotStored)
	assert.Equal(t, clierrors.ErrorTypeCapacity, clierrors.CategorizeError(err).Type)
}

func TestSetCommandsNeedHandle(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("bookmark", "list")
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeSession, cliErr.Type)

	c.mustRun("session", "set", "@alice")
	c.mustRun("bookmark", "add", "post-1")

	var marks []string
	decode(t, c.mustRun("bookmark", "list", "-o", "json"), &marks)
	assert.Equal(t, []string{"post-1"}, marks)

	var sess map[string]string
	decode(t, c.mustRun("session", "show", "-o", "json"), &sess)
	assert.Equal(t, "alice", sess["handle"])
}

func TestRecentSearchCommands(t *testing.T) {
	c := newCLI(t)

	c.mustRun("search", "recent", "add", "AAPL", "-t", "stock")
	c.mustRun("search", "recent", "add", "BTC", "-t", "crypto")

	var all []lists.Search
	decode(t, c.mustRun("search", "recent", "list", "-o", "json"), &all)
	require.Len(t, all, 2)
	assert.Equal(t, "BTC", all[0].Query)

	var grouped lists.GroupedSearches
	decode(t, c.mustRun("search", "recent", "list", "--grouped", "-o", "json"), &grouped)
	assert.Len(t, grouped.Stocks, 1)

	c.mustRun("search", "recent", "remove", all[0].ID)
	c.mustRun("search", "recent", "clear", "--force")
	decode(t, c.mustRun("search", "recent", "list", "-o", "json"), &all)
	assert.Empty(t, all)

	_, err := c.run("search", "recent", "add", "x", "-t", "bond")
	var typeErr *lists.InvalidTypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestWatchlistCommands(t *testing.T) {
	c := newCLI(t)

	c.mustRun("watchlist", "add", "aapl", "--name", "Apple", "--price", "190.5")
	c.mustRun("watchlist", "add", "tsla")

	var items []lists.WatchlistItem
	decode(t, c.mustRun("watchlist", "list", "-o", "json"), &items)
	require.Len(t, items, 2)
	assert.Equal(t, "AAPL", items[0].Ticker)
	assert.Equal(t, "Apple", items[0].Name)
	assert.Equal(t, "TSLA", items[1].Name)

	out := c.mustRun("watchlist", "list", "-o", "table")
	assert.Contains(t, out, "190.50")

	c.mustRun("watchlist", "remove", "AAPL")
	decode(t, c.mustRun("watchlist", "list", "-o", "json"), &items)
	assert.Len(t, items, 1)
}

func TestConfigCommands(t *testing.T) {
	c := newCLI(t)

	var paths map[string]string
	decode(t, c.mustRun("config", "path", "-o", "json"), &paths)
	assert.Equal(t, c.configPath, paths["file"])
	assert.Equal(t, filepath.Dir(c.configPath), paths["dir"])

	c.mustRun("config", "set", "store.backend", "memory")
	assert.FileExists(t, c.configPath)

	var got map[string]string
	decode(t, c.mustRun("config", "get", "store.backend", "-o", "json"), &got)
	assert.Equal(t, "memory", got["store.backend"])
}

func TestSessionSetWithoutHandleNeedsTerminal(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("session", "set")
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeValidation, cliErr.Type)
}

func TestInvalidOutputFormat(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("version", "-o", "yaml")
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeValidation, cliErr.Type)
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	assert.Contains(t, c.mustRun("version"), Version)
}
