package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/internal/config"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and configuration information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	fmt.Printf("Sift %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println("Configuration:")
	fmt.Printf("  Model: %s\n", cfg.ModelName)
	fmt.Printf("  Model endpoint: %s\n", cfg.ModelBaseURL)
	fmt.Printf("  Search max results: %d\n", cfg.SearchMaxResults)
	fmt.Printf("  Listen address: %s\n", cfg.Addr)
	fmt.Printf("  Chat persistence: %s\n", enabledWord(cfg.PersistenceEnabled()))
	fmt.Printf("  Telegram bot: %s\n", enabledWord(cfg.BotEnabled()))

	printKeyStatus("GROQ_API_KEY")
	printKeyStatus("TAVILY_API_KEY")
	return nil
}

func enabledWord(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

// printKeyStatus shows whether a credential is set without revealing it.
func printKeyStatus(name string) {
	key := os.Getenv(name)
	if len(key) >= 8 {
		fmt.Printf("  %s: %s...%s (configured)\n", name, key[:4], key[len(key)-4:])
	} else if key != "" {
		fmt.Printf("  %s: (configured)\n", name)
	} else {
		fmt.Printf("  %s: Not set\n", name)
	}
}
