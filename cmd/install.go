package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/olivia646/spotify-concerts/internal/service"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the web server as a launchd agent",
	Long: `Install 'spotify-concerts serve' as a launchd agent that runs automatically on login (macOS).

This command will:
  - Generate a launchd plist file for the server
  - Install it to ~/Library/LaunchAgents/
  - Load the agent with launchctl

Run 'spotify-concerts auth' first so the Spotify app credentials are configured.`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().String("addr", "", "Listen address for the agent (default: server.addr from config)")
}

func runInstall(cmd *cobra.Command, args []string) error {
	binaryPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual binary path
	binaryPath, err = filepath.EvalSymlinks(binaryPath)
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	logDir, err := service.LogDir()
	if err != nil {
		return fmt.Errorf("failed to get log path: %w", err)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	addr, _ := cmd.Flags().GetString("addr")
	plistContent, err := service.GeneratePlist(service.PlistConfig{
		BinaryPath:       binaryPath,
		LogDir:           logDir,
		WorkingDirectory: home,
		Addr:             addr,
	})
	if err != nil {
		return fmt.Errorf("failed to generate plist: %w", err)
	}

	plistPath, err := service.PlistPath()
	if err != nil {
		return fmt.Errorf("failed to get plist path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(plistPath), 0755); err != nil {
		return fmt.Errorf("failed to create LaunchAgents directory: %w", err)
	}

	if _, err := os.Stat(plistPath); err == nil {
		fmt.Println("Agent is already installed. Reloading...")
		unloadAgent()
	}

	if err := os.WriteFile(plistPath, []byte(plistContent), 0644); err != nil {
		return fmt.Errorf("failed to write plist file: %w", err)
	}
	fmt.Printf("✓ Installed plist to %s\n", plistPath)

	out, err := exec.Command("launchctl", "bootstrap", service.Domain(), plistPath).CombinedOutput()
	if err != nil {
		return fmt.Errorf("launchctl bootstrap failed: %s: %w", out, err)
	}

	fmt.Println("✓ Agent loaded and started")
	fmt.Printf("✓ Logs will be written to %s\n", logDir)
	fmt.Println("\nCheck the agent with:")
	fmt.Println("  launchctl list | grep spotify-concerts")
	fmt.Println("\nTo uninstall, run:")
	fmt.Println("  spotify-concerts uninstall")

	return nil
}

// unloadAgent stops the agent. Failures are reported, not returned, since
// the agent may simply not be loaded.
func unloadAgent() {
	target := service.Domain() + "/" + service.Label
	if out, err := exec.Command("launchctl", "bootout", target).CombinedOutput(); err != nil && len(out) > 0 {
		fmt.Printf("Warning: %s\n", out)
	}
}
