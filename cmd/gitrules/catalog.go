package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitrules/gitrules/internal/catalog"
	"github.com/gitrules/gitrules/internal/defaults"
	"github.com/gitrules/gitrules/internal/logging"
	"github.com/gitrules/gitrules/internal/ranking"
)

// CatalogCmd creates the catalog inspection command
func CatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the action catalog",
		Long: `The catalog directory holds agents.yaml, rules.yaml, mcps.yaml and packs.yaml.
Missing files are treated as empty; a malformed file only empties its own category.`,
	}

	var (
		actionType string
		tags       string
		limit      int
		offset     int
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts := catalog.ListOptions{Limit: limit, Offset: offset}
			if actionType != "" {
				if opts.Type, err = catalog.ParseActionType(actionType); err != nil {
					return err
				}
			}
			if tags != "" {
				opts.Tags = strings.Split(tags, ",")
			}
			items, total := snap.List(opts)
			return printList(cmd.OutOrStdout(), snap, items, total)
		},
	}
	listCmd.Flags().StringVarP(&actionType, "type", "t", "", "agent, rule, ruleset, mcp or pack")
	listCmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags, any match")
	listCmd.Flags().IntVar(&limit, "limit", catalog.DefaultListLimit, "page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "skip this many results")
	cmd.AddCommand(listCmd)

	var searchLimit int
	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search agents, rules and MCPs",
		Long:  `Queries containing * or ? are case-insensitive globs; other queries are ranked by exact, substring and fuzzy matches.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			all := ranking.SearchAll(snap, args[0], searchLimit)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), all)
			}
			out := cmd.OutOrStdout()
			for _, group := range []struct {
				name    string
				results []ranking.Result
			}{{"Agents", all.Agents}, {"Rules", all.Rules}, {"MCPs", all.MCPs}} {
				fmt.Fprintf(out, "%s (%d):\n", group.name, len(group.results))
				for _, r := range group.results {
					fmt.Fprintf(out, "  %3d  %-28s %s\n", r.Relevance, r.ID, r.DisplayName)
				}
			}
			return nil
		},
	}
	searchCmd.Flags().IntVar(&searchLimit, "limit", ranking.DefaultLimit, "results per category")
	cmd.AddCommand(searchCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show [id]",
		Short: "Show one action with its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a, err := snap.Get(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), a)
			}
			printAction(cmd.OutOrStdout(), snap, a)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the starter catalog into the catalog directory",
		Long:  `Copies the built-in starter catalog into catalog.dir. Existing files are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ServerConfig.Catalog.Dir
			if err := defaults.EnsureCatalogDir(dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog ready in %s\n", dir)
			return nil
		},
	})

	return cmd
}

// loadSnapshot reads the catalog once with logging off; diagnostics go to errOut.
func loadSnapshot(errOut io.Writer) (*catalog.Snapshot, error) {
	logging.Disable()
	defer logging.Enable()

	store, err := catalog.OpenDir(ServerConfig.Catalog.Dir)
	if err != nil {
		return nil, err
	}
	snap := store.Snapshot()
	for _, d := range snap.Diagnostics() {
		fmt.Fprintf(errOut, "warning: %v\n", d)
	}
	return snap, nil
}

func printList(out io.Writer, snap *catalog.Snapshot, items []*catalog.Action, total int) error {
	if jsonOutput {
		return writeJSON(out, map[string]any{"actions": items, "total": total})
	}
	if total == 0 {
		fmt.Fprintln(out, "No actions found.")
		return nil
	}
	for _, a := range items {
		fmt.Fprintf(out, "  %-8s %-28s %s\n", a.Type, a.ID, a.Title())
		if tags := snap.EffectiveTags(a.ID); len(tags) > 0 {
			fmt.Fprintf(out, "           Tags: %s\n", strings.Join(tags, ", "))
		}
	}
	fmt.Fprintf(out, "\n%d of %d actions\n", len(items), total)
	return nil
}

func printAction(out io.Writer, snap *catalog.Snapshot, a *catalog.Action) {
	fmt.Fprintf(out, "%s (%s)\n", a.Title(), a.Type)
	fmt.Fprintf(out, "  ID: %s\n", a.ID)
	if tags := snap.EffectiveTags(a.ID); len(tags) > 0 {
		fmt.Fprintf(out, "  Tags: %s\n", strings.Join(tags, ", "))
	}
	if a.Author != "" {
		fmt.Fprintf(out, "  Author: %s\n", a.Author)
	}
	if a.Description != "" {
		fmt.Fprintf(out, "  Description: %s\n", a.Description)
	}
	if len(a.Children) > 0 {
		refs, _ := snap.Children(a.ID)
		fmt.Fprintln(out, "  Children:")
		for _, ref := range refs {
			if ref.Err != nil {
				fmt.Fprintf(out, "    - %s (missing)\n", ref.ID)
				continue
			}
			fmt.Fprintf(out, "    - %s (%s)\n", ref.ID, ref.Action.Type)
		}
	}
	if a.Config != nil {
		data, _ := json.MarshalIndent(a.Config, "  ", "  ")
		fmt.Fprintf(out, "  Config:\n  %s\n", data)
	}
	if a.Content != "" {
		fmt.Fprintf(out, "\n%s\n", strings.TrimRight(a.Content, "\n"))
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
