package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"igviral/pkg/hiker"
	"igviral/pkg/logger"
	"igviral/pkg/models"
	"igviral/pkg/rank"
	"igviral/pkg/stats"
)

var (
	searchPageID string
	searchPages  int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a ranked search from the command line",
}

var searchKeywordCmd = &cobra.Command{
	Use:   "keyword <term>",
	Short: "Search posts by keyword/hashtag and rank them",
	Example: `  # First page
  igviral search keyword sunset

  # Walk three pages
  igviral search keyword sunset --pages 3`,
	Args: cobra.ExactArgs(1),
	RunE: runSearchKeyword,
}

var searchAccountCmd = &cobra.Command{
	Use:   "account <username>",
	Short: "Search an account's posts and rank them",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearchAccount,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.AddCommand(searchKeywordCmd)
	searchCmd.AddCommand(searchAccountCmd)

	searchCmd.PersistentFlags().StringVar(&searchPageID, "page-id", "", "pagination cursor to start from")
	searchCmd.PersistentFlags().IntVar(&searchPages, "pages", 1, "number of pages to walk")
}

func runSearchKeyword(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	client := hiker.NewClient(cfg, logger.GetLogger())
	keyword := strings.TrimSpace(args[0])

	cursor := searchPageID
	for page := 0; page < searchPages; page++ {
		result, err := client.PostsByKeyword(context.Background(), keyword, cursor)
		if err != nil {
			return err
		}

		printRanked(cmd, result.Posts)

		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
		cmd.Printf("\n-- next page: %s --\n\n", cursor)
	}

	return nil
}

func runSearchAccount(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	client := hiker.NewClient(cfg, logger.GetLogger())
	username := strings.TrimSpace(args[0])

	profile, err := client.ProfileByUsername(context.Background(), username)
	if err != nil {
		return err
	}

	cmd.Printf("%s (%s): %s followers, %s posts\n\n",
		profile.Username,
		profile.FullName,
		stats.FormatNumber(float64(profile.FollowerCount)),
		stats.FormatNumber(float64(profile.MediaCount)),
	)

	cursor := searchPageID
	for page := 0; page < searchPages; page++ {
		result, err := client.MediasByUserID(context.Background(), profile.PK, cursor)
		if err != nil {
			return err
		}

		printRanked(cmd, result.Posts)

		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
		cmd.Printf("\n-- next page: %s --\n\n", cursor)
	}

	return nil
}

func printRanked(cmd *cobra.Command, posts []models.Post) {
	ranked := rank.Page(posts)

	if len(ranked.Clips) > 0 {
		cmd.Println("Reels:")
		printPosts(cmd, ranked.Clips)
	}
	if len(ranked.Posts) > 0 {
		cmd.Println("Posts:")
		printPosts(cmd, ranked.Posts)
	}
	if len(ranked.Clips) == 0 && len(ranked.Posts) == 0 {
		cmd.Println("No results.")
	}
}

func printPosts(cmd *cobra.Command, posts []models.Post) {
	for i, p := range posts {
		views := ""
		if p.PlayCount > 0 {
			views = fmt.Sprintf("  views=%s", stats.FormatNumber(float64(p.PlayCount)))
		}
		cmd.Printf("%3d. %.4f  likes=%s  comments=%s%s  %s\n",
			i+1,
			p.Virality,
			stats.FormatNumber(float64(p.LikeCount)),
			stats.FormatNumber(float64(p.CommentCount)),
			views,
			p.PermalinkURL(),
		)
	}
}
