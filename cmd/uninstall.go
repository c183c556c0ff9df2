package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/olivia646/spotify-concerts/internal/service"
)

// uninstallCmd represents the uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the web server launchd agent",
	Long: `Stop the launchd agent installed by 'spotify-concerts install' and remove
its plist from ~/Library/LaunchAgents/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		plistPath, err := service.PlistPath()
		if err != nil {
			return fmt.Errorf("failed to get plist path: %w", err)
		}

		if _, err := os.Stat(plistPath); os.IsNotExist(err) {
			fmt.Println("Agent is not installed (plist not found)")
			return nil
		}

		fmt.Println("Stopping agent...")
		unloadAgent()

		if err := os.Remove(plistPath); err != nil {
			return fmt.Errorf("failed to remove plist file: %w", err)
		}

		fmt.Printf("✓ Removed plist from %s\n", plistPath)
		fmt.Println("\nTo reinstall, run:")
		fmt.Println("  spotify-concerts install")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
