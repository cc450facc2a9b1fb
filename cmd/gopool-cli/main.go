// Gopool-cli is a command line client for the ConnectMyPool cloud API.
//
// It talks straight to the cloud, not to a running gopoold, so it works
// anywhere the pool API code does. Read commands honour the cloud's read
// throttle; write commands open the fast-poll window just like the
// daemon.
//
// Usage:
//
//	gopool-cli [command] [flags]
//
// The pool API code comes from --api-code or the GOPOOL_API_CODE
// environment variable.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshp123/gopool/internal/connectmypool"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	apiCode    string
	baseURL    string
	fahrenheit bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "gopool-cli",
	Short: "ConnectMyPool command line client",
	Long: `A command line client for ConnectMyPool pool and spa controllers.

Reads pool topology and live status, issues actions, and changes device
modes by cycling, the only mode-change operation the cloud offers.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&apiCode, "api-code", "", "pool API code (default $GOPOOL_API_CODE)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", connectmypool.DefaultBaseURL, "API endpoint")
	rootCmd.PersistentFlags().BoolVar(&fahrenheit, "fahrenheit", false, "report temperatures in fahrenheit")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON responses")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(actionCmd)
	rootCmd.AddCommand(actionStatusCmd)
	rootCmd.AddCommand(setModeCmd)
}

// resolveAPICode applies the flag/env fallback. Kept out of flag defaults
// so the code never appears in --help output.
func resolveAPICode() (string, error) {
	if apiCode != "" {
		return apiCode, nil
	}
	if env := strings.TrimSpace(os.Getenv("GOPOOL_API_CODE")); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("pool API code required: pass --api-code or set GOPOOL_API_CODE")
}

func scale() int {
	if fahrenheit {
		return connectmypool.ScaleFahrenheit
	}
	return connectmypool.ScaleCelsius
}

func newClient() *connectmypool.Client {
	return connectmypool.NewClient(baseURL)
}
