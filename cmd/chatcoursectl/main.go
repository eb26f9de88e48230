package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"chatcourse/internal/config"
	"chatcourse/internal/database"
	"chatcourse/internal/models"
	"chatcourse/pkg/discourse"
	"chatcourse/pkg/googlechat"
)

// Discourse rejects category names longer than this.
const maxCategoryNameLen = 50

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appContext bundles the handles every command needs. The caller must defer
// Close().
type appContext struct {
	cfg   *models.Config
	db    *database.Database
	chat  googlechat.Client
	forum discourse.Client
}

func (a *appContext) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func newAppContext() (*appContext, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	chatClient := googlechat.NewClientWithLogger(
		cfg.GoogleChat.APIBaseURL,
		cfg.GoogleChat.AccessToken,
		cfg.GoogleChat.PageSize,
		&http.Client{Timeout: time.Duration(cfg.GoogleChat.TimeoutSec) * time.Second},
		logger,
	)
	forumClient := discourse.NewClientWithLogger(
		cfg.Discourse.BaseURL,
		cfg.Discourse.APIKey,
		cfg.Discourse.APIUsername,
		&http.Client{Timeout: time.Duration(cfg.Discourse.TimeoutSec) * time.Second},
		nil,
		logger,
	)

	return &appContext{cfg: cfg, db: db, chat: chatClient, forum: forumClient}, nil
}

var rootCmd = &cobra.Command{
	Use:   "chatcoursectl",
	Short: "Administer Google Chat to Discourse bridge mappings",
}

var importSpacesCmd = &cobra.Command{
	Use:   "import-spaces",
	Short: "Create a Discourse category for every accessible Chat space",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()

		fmt.Println("Fetching Discourse categories...")
		categories, err := a.forum.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("listing categories: %w", err)
		}
		existingNames := make(map[string]bool, len(categories))
		for _, c := range categories {
			existingNames[normalizeName(c.Name)] = true
		}

		fmt.Println("Fetching Google Chat spaces...")
		spaces, err := a.chat.ListSpaces(ctx)
		if err != nil {
			return fmt.Errorf("listing spaces: %w", err)
		}

		created, skipped := 0, 0
		for _, space := range spaces {
			if space.IsDirectMessage() {
				skipped++
				continue
			}
			// Spaces without a display name are typically inaccessible.
			if space.DisplayName == "" {
				fmt.Printf("Skipping space %s: no display name (likely inaccessible)\n", space.Name)
				skipped++
				continue
			}

			mapped, err := a.db.GetCategoryIDBySpace(ctx, space.Name)
			if err != nil {
				return err
			}
			if mapped != nil {
				fmt.Printf("Skipping %q: already mapped to category %d\n", space.DisplayName, *mapped)
				skipped++
				continue
			}
			if existingNames[normalizeName(space.DisplayName)] {
				fmt.Printf("Skipping %q: category with that name already exists\n", space.DisplayName)
				skipped++
				continue
			}

			name := uniqueTruncatedName(space.DisplayName, existingNames, maxCategoryNameLen)
			if name != space.DisplayName {
				fmt.Printf("Adjusting name %q -> %q to fit Discourse limits\n", space.DisplayName, name)
			}

			category, err := a.forum.CreateCategory(ctx, name, 0)
			if err != nil {
				fmt.Printf("Failed to create category for %q: %v\n", space.DisplayName, err)
				continue
			}
			if err := a.db.SaveSpaceCategoryMapping(ctx, space.Name, category.ID); err != nil {
				return err
			}

			existingNames[normalizeName(category.Name)] = true
			created++
			fmt.Printf("Created category %d %q for space %s\n", category.ID, category.Name, space.Name)
		}

		fmt.Printf("\nSummary: created %d categories, skipped %d spaces\n", created, skipped)
		return nil
	},
}

var mapSpaceCmd = &cobra.Command{
	Use:   "map-space SPACE_ID CATEGORY_ID",
	Short: "Map an existing Chat space to an existing Discourse category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := context.Background()
		spaceID := args[0]
		categoryID, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid category ID %q: %w", args[1], err)
		}

		space, err := a.chat.GetSpace(ctx, spaceID)
		if err != nil {
			return fmt.Errorf("fetching space %s: %w", spaceID, err)
		}
		category, err := a.forum.GetCategory(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("fetching category %d: %w", categoryID, err)
		}

		if err := a.db.SaveSpaceCategoryMapping(ctx, spaceID, categoryID); err != nil {
			return fmt.Errorf("saving mapping: %w", err)
		}

		fmt.Printf("Mapped space %q (%s) to category %q (%d)\n",
			space.DisplayName, spaceID, category.Name, categoryID)
		return nil
	},
}

var listMappingsCmd = &cobra.Command{
	Use:   "list-mappings",
	Short: "Show all space-to-category mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext()
		if err != nil {
			return err
		}
		defer a.Close()

		mappings, err := a.db.ListSpaceCategoryMappings(context.Background())
		if err != nil {
			return err
		}
		if len(mappings) == 0 {
			fmt.Println("No mappings recorded.")
			return nil
		}

		for _, m := range mappings {
			fmt.Printf("%-40s -> %6d  (since %s)\n",
				m.ChatSpaceID, m.ForumCategoryID, m.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "Show all chat-to-forum user mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAppContext()
		if err != nil {
			return err
		}
		defer a.Close()

		mappings, err := a.db.ListUserMappings(context.Background())
		if err != nil {
			return err
		}
		if len(mappings) == 0 {
			fmt.Println("No user mappings recorded.")
			return nil
		}

		for _, m := range mappings {
			fmt.Printf("%-20s -> %-40s  %s <%s>\n",
				m.ForumUsername, m.ChatUserID, m.ChatDisplayName, m.ChatEmail)
		}
		return nil
	},
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// uniqueTruncatedName fits desired into maxLen characters while staying
// unique against the normalized names in existing. Collisions after
// truncation get a numeric " (n)" suffix within the limit.
func uniqueTruncatedName(desired string, existing map[string]bool, maxLen int) string {
	base := strings.TrimSpace(desired)
	runes := []rune(base)
	if len(runes) <= maxLen && !existing[normalizeName(base)] {
		return base
	}

	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	cand := strings.TrimRight(string(runes), " ")

	for i := 2; existing[normalizeName(cand)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		avail := maxLen - len(suffix)
		if avail <= 0 {
			num := strconv.Itoa(i)
			cut := []rune(base)
			if len(cut) > maxLen-len(num) {
				cut = cut[:maxLen-len(num)]
			}
			cand = strings.TrimRight(string(cut), " ") + num
			continue
		}
		cut := []rune(base)
		if len(cut) > avail {
			cut = cut[:avail]
		}
		cand = strings.TrimRight(string(cut), " ") + suffix
	}
	return cand
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "Path to configuration file")

	rootCmd.AddCommand(importSpacesCmd)
	rootCmd.AddCommand(mapSpaceCmd)
	rootCmd.AddCommand(listMappingsCmd)
	rootCmd.AddCommand(listUsersCmd)
}
