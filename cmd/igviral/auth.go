package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"igviral/pkg/auth"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage scraping provider API keys",
	Long: `Manage the API keys for the scraping backends.

Keys are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)`,
}

var authSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store an API key for a provider",
	Long: `Store an API key for a scraping provider. The key is prompted for
without echo.

Known providers: apify, hiker.`,
	Example: `  igviral auth set apify
  igviral auth set hiker`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthSet,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored provider keys (masked)",
	RunE:  runAuthList,
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove <provider>",
	Short: "Remove a stored provider key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	provider := strings.ToLower(strings.TrimSpace(args[0]))

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "API key for %s: ", provider)
	keyBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	key := strings.TrimSpace(string(keyBytes))
	if key == "" {
		return fmt.Errorf("key must not be empty")
	}

	if err := manager.Store(&auth.Credential{Provider: provider, APIKey: key}); err != nil {
		return err
	}

	cmd.Printf("Stored key for %s\n", provider)
	return nil
}

func runAuthList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	creds, err := manager.List()
	if err != nil {
		return err
	}

	if len(creds) == 0 {
		cmd.Println("No stored keys.")
		return nil
	}

	for _, cred := range creds {
		masked := auth.Sanitize(cred)
		cmd.Printf("%-10s %s  (updated %s)\n",
			masked.Provider,
			masked.APIKey,
			masked.LastModified.Format("2006-01-02 15:04"),
		)
	}
	return nil
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	provider := strings.ToLower(strings.TrimSpace(args[0]))

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if err := manager.Delete(provider); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd.Printf("Removed key for %s\n", provider)
	return nil
}
