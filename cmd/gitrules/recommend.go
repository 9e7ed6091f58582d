package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitrules/gitrules/internal/ai"
	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/ingest"
	"github.com/gitrules/gitrules/internal/recommend"
)

// RecommendCmd asks the configured model for a selection
func RecommendCmd() *cobra.Command {
	var (
		repoURL     string
		contextFile string
		prompt      string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend agents, rules and MCPs for a repository",
		Long: `Send the repository context and the catalog to the configured model and print
the validated selection. Context comes from --context-file, or is fetched
from the ingestion service for --repo-url.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ServerConfig
			var repoContext string
			if contextFile != "" {
				data, err := os.ReadFile(contextFile)
				if err != nil {
					return err
				}
				repoContext = string(data)
			}

			completer, err := ai.NewFromConfig(c.LLM)
			if err != nil {
				return fmt.Errorf("llm: %w", err)
			}
			store, err := catalog.OpenDir(c.Catalog.Dir)
			if err != nil {
				return err
			}

			r := recommend.NewRecommender(store, completer, ingest.NewClient(c.Ingest), recommend.Options{
				Model:       c.LLM.Model,
				Temperature: c.LLM.Temperature,
				MaxTokens:   c.LLM.MaxTokens,
			})
			res, err := r.Recommend(cmd.Context(), recommend.Request{
				RepoURL:    repoURL,
				Context:    repoContext,
				UserPrompt: prompt,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(w, map[string]any{
					"preselect":       res.Preselect,
					"rationales":      res.Rationales,
					"context_size":    res.ContextSize,
					"catalog_version": res.CatalogVersion,
				})
			}
			for _, group := range []struct {
				category string
				slugs    []string
			}{
				{recommend.CategoryRules, res.Preselect.Rules},
				{recommend.CategoryAgents, res.Preselect.Agents},
				{recommend.CategoryMCPs, res.Preselect.MCPs},
			} {
				fmt.Fprintf(w, "%s: %s\n", group.category, strings.Join(group.slugs, ", "))
				for _, slug := range group.slugs {
					if why := res.Rationales[group.category+":"+slug]; why != "" {
						fmt.Fprintf(w, "  %s: %s\n", slug, why)
					}
				}
			}
			fmt.Fprintf(w, "\ncatalog %s, context %d chars\n", res.CatalogVersion, res.ContextSize)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoURL, "repo-url", "", "repository to ingest")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "file with repository context")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "what to focus on")
	return cmd
}
