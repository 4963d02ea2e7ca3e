package cmd

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/output"
	"github.com/zfogg/pageshare/pkg/post"
	"github.com/zfogg/pageshare/pkg/prompter"
	"github.com/zfogg/pageshare/pkg/snapshot"
)

var (
	cacheSaveFile    string
	cacheShowLimit   int
	cacheMetricsFile string
	cacheClearForce  bool
	cacheSeedCount   int
	cacheSeedMedia   int
	cacheSeedValue   uint64
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local posts snapshot",
	Long:  "Save, inspect and clear the size-bounded posts snapshot",
}

var cacheSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Persist a post list from a JSON file",
	Long:  "Persist a newest-first JSON array of posts through the size budget. Use --file - for stdin.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if cacheSaveFile != "-" {
			f, err := os.Open(cacheSaveFile)
			if err != nil {
				return clierrors.NewCLIError(clierrors.ErrorTypeValidation, "Failed to open "+cacheSaveFile, err)
			}
			defer f.Close()
			r = f
		}

		var posts []post.Post
		if err := json.NewDecoder(r).Decode(&posts); err != nil {
			return clierrors.ValidationError("file", "expected a JSON array of posts")
		}

		return withApp(cmd.Context(), func(a *app) error {
			return printResult(a.store.Persist(cmd.Context(), posts))
		})
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List stored posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			posts := a.store.Load(cmd.Context())
			if cacheShowLimit > 0 && len(posts) > cacheShowLimit {
				posts = posts[:cacheShowLimit]
			}
			return printPosts("Stored posts", posts)
		})
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Describe the stored snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			stats, err := a.store.Inspect(cmd.Context())
			if err != nil {
				return clierrors.StorageError("Failed to inspect snapshot", err)
			}

			if cacheMetricsFile != "" {
				if err := prometheus.WriteToTextfile(cacheMetricsFile, a.registry); err != nil {
					return clierrors.NewCLIError(clierrors.ErrorTypeUnknown, "Failed to write metrics file", err)
				}
			}

			return output.PrintRecord("Snapshot", []output.Field{
				{Key: "backend", Value: a.backendName},
				{Key: "key", Value: stats.Key},
				{Key: "records", Value: stats.Records},
				{Key: "bytes", Value: stats.Bytes},
				{Key: "with_attachments", Value: stats.WithAttachments},
			})
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the posts snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := prompter.Confirm("Delete the local posts snapshot?", cacheClearForce)
		if err != nil {
			return err
		}
		if !ok {
			output.PrintInfo("Cancelled. Pass --force to skip the prompt.")
			return nil
		}

		return withApp(cmd.Context(), func(a *app) error {
			if err := a.store.Clear(cmd.Context()); err != nil {
				return clierrors.StorageError("Failed to clear snapshot", err)
			}
			output.PrintSuccess("Snapshot cleared")
			return nil
		})
	},
}

var cacheSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Persist synthetic posts",
	Long:  "Generate fake posts and persist them, useful for exercising the size budget",
	RunE: func(cmd *cobra.Command, args []string) error {
		posts := post.Fake(cacheSeedCount, post.FakeOptions{
			MediaBytes: cacheSeedMedia,
			Seed:       cacheSeedValue,
			Start:      time.Now().UTC(),
		})
		return withApp(cmd.Context(), func(a *app) error {
			return printResult(a.store.Persist(cmd.Context(), posts))
		})
	},
}

func printResult(res snapshot.Result) error {
	fields := []output.Field{
		{Key: "outcome", Value: res.Outcome},
		{Key: "records", Value: res.Records},
		{Key: "stripped", Value: res.Stripped},
		{Key: "bytes", Value: res.Bytes},
	}
	if res.Limit > 0 {
		fields = append(fields, output.Field{Key: "limit", Value: res.Limit})
	}
	if res.Cleared {
		fields = append(fields, output.Field{Key: "cleared", Value: true})
	}
	if res.Reason != "" {
		fields = append(fields, output.Field{Key: "reason", Value: res.Reason})
	}
	return output.PrintRecord("Persist", fields)
}

func printPosts(title string, posts []post.Post) error {
	if posts == nil {
		posts = []post.Post{}
	}
	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []string{
			p.ID,
			"@" + p.Author.Handle,
			p.CreatedAt.Local().Format(time.DateTime),
			strconv.Itoa(len(p.Media)),
			truncate(p.Content, 60),
		})
	}
	return output.PrintTable(title, posts, []string{"ID", "Author", "Created", "Media", "Content"}, rows)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	cacheCmd.AddCommand(cacheSaveCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheSeedCmd)

	cacheSaveCmd.Flags().StringVarP(&cacheSaveFile, "file", "f", "-", "JSON file with a post array, - for stdin")
	cacheShowCmd.Flags().IntVarP(&cacheShowLimit, "limit", "l", 20, "Maximum posts to list (0 for all)")
	cacheStatsCmd.Flags().StringVar(&cacheMetricsFile, "metrics-file", "", "Also write Prometheus metrics to this textfile")
	cacheClearCmd.Flags().BoolVar(&cacheClearForce, "force", false, "Do not ask for confirmation")
	cacheSeedCmd.Flags().IntVarP(&cacheSeedCount, "count", "n", 100, "Number of posts")
	cacheSeedCmd.Flags().IntVar(&cacheSeedMedia, "media-bytes", 0, "Size of the media attachment on each post")
	cacheSeedCmd.Flags().Uint64Var(&cacheSeedValue, "seed", 0, "Random seed (0 for random)")
}
