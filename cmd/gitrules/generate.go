package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gitrules/gitrules/internal/emit"
	"github.com/gitrules/gitrules/internal/scripts"
)

// GenerateCmd emits configuration files for a selection
func GenerateCmd() *cobra.Command {
	var (
		formats []string
		source  string
		repoURL string
		outDir  string
		mode    string
	)

	cmd := &cobra.Command{
		Use:   "generate [ids...]",
		Short: "Generate configuration files from action ids",
		Long: `Resolve the given ids (packs expand to their members) and emit the files for
the chosen formats. By default the files are written under --out; use
--print patch or --print script to write a patch or an installer script to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			fs := make([]emit.Format, len(formats))
			for i, f := range formats {
				if _, ok := emit.FileFor(emit.Format(f)); !ok {
					return fmt.Errorf("unknown format %q (want claude, agents or cursor)", f)
				}
				fs[i] = emit.Format(f)
			}

			sel := emit.Resolve(snap, args)
			if sel.Len() == 0 {
				return fmt.Errorf("none of the ids matched the catalog")
			}
			out := emit.Emit(sel, fs, emit.ParseSource(source, repoURL))
			envVars := emit.EnvVarsInFiles(out.Files)

			w := cmd.OutOrStdout()
			switch mode {
			case "patch":
				fmt.Fprintln(w, out.Patch)
				return nil
			case "script":
				script, err := scripts.Render(out.Map(), scripts.RenderOptions{EnvVars: envVars})
				if err != nil {
					return err
				}
				fmt.Fprint(w, script)
				return nil
			case "", "files":
			default:
				return fmt.Errorf("unknown --print value %q", mode)
			}

			for _, f := range out.Files {
				path := filepath.Join(outDir, filepath.FromSlash(f.Path))
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					return err
				}
				if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
					return err
				}
				fmt.Fprintf(w, "Created %s\n", f.Path)
			}
			if len(envVars) > 0 {
				fmt.Fprintf(w, "\nSet these environment variables: %v\n", envVars)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{string(emit.FormatClaude)}, "claude, agents and/or cursor")
	cmd.Flags().StringVar(&source, "source", string(emit.SourceScratch), "scratch, template or repo (patch header)")
	cmd.Flags().StringVar(&repoURL, "repo-url", "", "repository URL recorded in the patch header")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write files into")
	cmd.Flags().StringVar(&mode, "print", "", "print a patch or script instead of writing files")
	return cmd
}
