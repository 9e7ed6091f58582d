package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrules/gitrules/internal/config"
	"github.com/gitrules/gitrules/internal/logging"
)

// Version is set at build time with -ldflags "-X github.com/gitrules/gitrules/cmd/gitrules.Version=v1.2.3".
var Version = "dev"

// Shared CLI flags (used across multiple command files)
var (
	cfgFile    string
	catalogDir string
	jsonOutput bool
)

// ServerConfig holds the loaded configuration (set by main)
var ServerConfig *config.Config

// SetupRootCmd configures the root command with all subcommands and flags
func SetupRootCmd(c *config.Config) *cobra.Command {
	ServerConfig = c

	rootCmd := &cobra.Command{
		Use:   "gitrules",
		Short: "Gitrules - coding assistant configuration catalog",
		Long: `Gitrules serves a catalog of agents, rules, MCP servers and packs for AI
coding assistants, searches it, recommends a selection for a repository and
generates the configuration files (CLAUDE.md, AGENTS.md, .cursorrules,
.claude/agents/*.md, .mcp.json) plus an installer script.

Run 'gitrules serve' to start the HTTP and MCP server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(c)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file merged over the built-in defaults")
	rootCmd.PersistentFlags().StringVar(&catalogDir, "dir", "", "catalog directory (overrides catalog.dir)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(CatalogCmd())
	rootCmd.AddCommand(GenerateCmd())
	rootCmd.AddCommand(RecommendCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	})

	return rootCmd
}

// loadConfig applies the config file, GITRULES_* overrides and flags, then
// validates and sets up logging.
func loadConfig(c *config.Config) error {
	if cfgFile != "" {
		if err := c.MergeFile(cfgFile); err != nil {
			return err
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return err
	}
	if catalogDir != "" {
		c.Catalog.Dir = catalogDir
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return logging.Init(c.Log.Level, c.Log.Development)
}
