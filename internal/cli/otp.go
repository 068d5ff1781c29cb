package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var otpCmd = &cobra.Command{
	Use:   "otp",
	Short: "Show current dashboard token",
	Long: `Show the dashboard URL with the current access token (for when
you've scrolled past it).

Example:
  ligoview otp`,
	RunE: runOTP,
}

func init() {
	rootCmd.AddCommand(otpCmd)
}

func runOTP(cmd *cobra.Command, args []string) error {
	tokenFile := getTokenFilePath()

	data, err := os.ReadFile(tokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no server running (token file not found)\nStart the server with: ligoview serve")
		}
		return fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return fmt.Errorf("token file is empty")
	}

	serverURL := dashboardHost()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current dashboard token: %s\n", token)
	fmt.Fprintf(out, "Dashboard: %s/dashboard?token=%s\n", serverURL, token)
	return nil
}
