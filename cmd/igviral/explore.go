package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"igviral/pkg/explore"
	"igviral/pkg/logger"
	"igviral/pkg/rank"
	"igviral/pkg/stats"
)

var (
	exploreLimit int
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse explore topics and scrape rankings",
}

var exploreTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List explore topics and their subtopics",
	RunE:  runExploreTopics,
}

var exploreHashtagsCmd = &cobra.Command{
	Use:   "hashtags <term>",
	Short: "Scrape hashtags for a term and rank their top posts",
	Args:  cobra.ExactArgs(1),
	RunE:  runExploreHashtags,
}

var exploreProfilesCmd = &cobra.Command{
	Use:   "profiles <term>",
	Short: "Scrape profiles for a term and rank them by engagement",
	Args:  cobra.ExactArgs(1),
	RunE:  runExploreProfiles,
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.AddCommand(exploreTopicsCmd)
	exploreCmd.AddCommand(exploreHashtagsCmd)
	exploreCmd.AddCommand(exploreProfilesCmd)

	exploreCmd.PersistentFlags().IntVar(&exploreLimit, "limit", 20, "maximum results per scrape")
}

func newExploreClient() (*explore.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := setupLogging(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return explore.NewClient(cfg, logger.GetLogger()), nil
}

func runExploreTopics(cmd *cobra.Command, args []string) error {
	client, err := newExploreClient()
	if err != nil {
		return err
	}

	feed, err := client.Explore(context.Background())
	if err != nil {
		return err
	}

	for _, section := range feed.FitSections {
		cmd.Printf("%s (%s)\n", section.L1.Name, section.L1.FitID)
		for _, sub := range section.Subtopic {
			cmd.Printf("  - %s (%s)\n", sub.Name, sub.FitID)
		}
	}
	return nil
}

func runExploreHashtags(cmd *cobra.Command, args []string) error {
	client, err := newExploreClient()
	if err != nil {
		return err
	}

	result, err := client.Search(context.Background(), explore.SearchFilters{
		Search:       args[0],
		ResultsType:  "posts",
		SearchType:   "hashtag",
		ResultsLimit: exploreLimit,
		SearchLimit:  5,
	})
	if err != nil {
		return err
	}

	for _, tag := range result.Hashtags {
		cmd.Printf("#%s (%s posts)\n", tag.Name, tag.PostsCount)
		ranked := rank.HashtagMedia(tag.TopPosts)
		printScrapedPosts(cmd, "Reels", ranked.Reels)
		printScrapedPosts(cmd, "Posts", ranked.Posts)
		cmd.Println()
	}
	return nil
}

func printScrapedPosts(cmd *cobra.Command, label string, posts []explore.ScrapedPost) {
	if len(posts) == 0 {
		return
	}
	cmd.Printf("%s:\n", label)
	for i, p := range posts {
		cmd.Printf("%3d. %.2f  likes=%s  comments=%s  %s\n",
			i+1,
			p.Virality,
			stats.FormatNumber(float64(p.LikesCount)),
			stats.FormatNumber(float64(p.CommentsCount)),
			p.URL,
		)
	}
}

func runExploreProfiles(cmd *cobra.Command, args []string) error {
	client, err := newExploreClient()
	if err != nil {
		return err
	}

	result, err := client.Search(context.Background(), explore.SearchFilters{
		Search:       args[0],
		ResultsType:  "details",
		SearchType:   "user",
		ResultsLimit: exploreLimit,
		SearchLimit:  exploreLimit,
	})
	if err != nil {
		return err
	}

	ranked := rank.Profiles(result.Profiles)
	for i, p := range ranked {
		cmd.Printf("%3d. %.4f  @%s  %s followers\n",
			i+1,
			p.Virality,
			p.Username,
			stats.FormatNumber(float64(p.FollowersCount)),
		)
	}
	return nil
}
