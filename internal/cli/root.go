// Package cli implements bugctl, the terminal companion to the bug
// dashboard. All commands talk to the server through the client store, so
// the terminal sees the same list semantics as the web dashboard: every
// write is followed by a refetch.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bugdash/internal/client"
	"bugdash/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui       *output.UI
	gateway  *client.Gateway
	bugStore *client.BugStore

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "bugctl",
	Short: "Bug dashboard CLI - submit, triage and resolve bug reports",
	Long: `bugctl is the terminal companion to the internal bug dashboard.
It lists, submits, edits and resolves bug reports against the same API
the web dashboard uses.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return dashboardRun()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/bugctl/config.yaml)")
	rootCmd.PersistentFlags().String("server", "", "Server base URL (overrides config)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "bugctl")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BUGCTL")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", "http://localhost:8080")
	viper.SetDefault("page_size", 10)
	viper.SetDefault("author", "")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()

	if server, _ := rootCmd.PersistentFlags().GetString("server"); server != "" {
		viper.Set("server_url", server)
	}
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose

	gateway = client.NewGateway(viper.GetString("server_url"))
	bugStore = client.NewBugStore(gateway, &uiNotifier{ui: ui})
}

// uiNotifier adapts the UI to the store's notifier contract.
type uiNotifier struct {
	ui *output.UI
}

func (n *uiNotifier) Success(msg string) { n.ui.Success("%s", msg) }
func (n *uiNotifier) Error(msg string)   { n.ui.Error("%s", msg) }
