package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zfogg/pageshare/pkg/api"
	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/output"
	"github.com/zfogg/pageshare/pkg/service"
	"github.com/zfogg/pageshare/pkg/session"
)

var (
	feedPages      int
	feedShowLimit  int
	feedBookmarked bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Feed commands",
	Long:  "Mirror remote feeds into the local snapshot and read them back",
}

var feedSyncCmd = &cobra.Command{
	Use:       "sync [timeline|following|trending]",
	Short:     "Fetch a feed and merge it into the local snapshot",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{api.FeedTimeline, api.FeedFollowing, api.FeedTrending},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := api.FeedTimeline
		if len(args) == 1 {
			kind = args[0]
		}
		if !api.ValidFeed(kind) {
			return clierrors.ValidationError("feed", "must be timeline, following or trending")
		}

		// repost flags are only recomputed when a handle is known
		handle, _ := session.Handle(asHandle)

		return withApp(cmd.Context(), func(a *app) error {
			report, err := service.NewFeedService(a.store).Sync(cmd.Context(), kind, feedPages, handle)
			if report.Fetched > 0 {
				if perr := output.PrintRecord("Synced "+kind, []output.Field{
					{Key: "pages", Value: report.Pages},
					{Key: "fetched", Value: report.Fetched},
					{Key: "total", Value: report.Total},
					{Key: "outcome", Value: report.Result.Outcome},
					{Key: "stored", Value: report.Result.Records},
				}); perr != nil {
					return perr
				}
			}
			return err
		})
	},
}

var feedShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the local timeline",
	Long:  "Show stored posts without authors you blocked or muted",
	RunE: func(cmd *cobra.Command, args []string) error {
		handle, err := actingHandle()
		if err != nil {
			return err
		}

		return withApp(cmd.Context(), func(a *app) error {
			svc := service.NewFeedService(a.store)
			title := "Timeline"
			posts := svc.Timeline(cmd.Context(), handle)
			if feedBookmarked {
				title = "Bookmarked"
				posts = svc.Bookmarked(cmd.Context(), handle)
			}
			if feedShowLimit > 0 && len(posts) > feedShowLimit {
				posts = posts[:feedShowLimit]
			}
			return printPosts(title, posts)
		})
	},
}

func init() {
	feedCmd.AddCommand(feedSyncCmd)
	feedCmd.AddCommand(feedShowCmd)

	feedSyncCmd.Flags().IntVarP(&feedPages, "pages", "p", 1, "Number of pages to fetch")
	feedShowCmd.Flags().IntVarP(&feedShowLimit, "limit", "l", 20, "Maximum posts to list (0 for all)")
	feedShowCmd.Flags().BoolVar(&feedBookmarked, "bookmarked", false, "Only show bookmarked posts")
}
