// Package scripts renders shell installers for generated files and keeps
// them in memory by content hash.
package scripts

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"
	"time"

	"al.essio.dev/pkg/shellescape"
)

// ErrUnsafePath is returned for absolute paths or paths leaving the working directory.
var ErrUnsafePath = errors.New("unsafe file path")

const delimiterBase = "GITRULES_EOF"

var installTemplate = template.Must(template.New("install.sh").Funcs(template.FuncMap{
	"quote": shellescape.Quote,
}).Parse(`#!/usr/bin/env bash
# Gitrules installer generated {{.Timestamp}}
set -euo pipefail
{{- if .EnvVars}}

echo "This configuration reads the following environment variables:"
{{- range .EnvVars}}
echo {{quote (printf "  - %s" .)}}
{{- end}}
{{- end}}
{{- if .Directories}}
{{range .Directories}}
mkdir -p {{quote .}}
{{- end}}
{{- end}}
{{- range .Files}}

cat > {{quote .Path}} <<'{{.Delimiter}}'
{{.Body}}{{.Delimiter}}
echo {{quote (printf "Created %s" .Path)}}
{{- end}}

echo "Done."
`))

// RenderOptions controls Render.
type RenderOptions struct {
	Now     time.Time
	EnvVars []string // listed at the top of the script when non-empty
}

type scriptFile struct {
	Path      string
	Body      string
	Delimiter string
}

type scriptData struct {
	Timestamp   string
	EnvVars     []string
	Directories []string
	Files       []scriptFile
}

// Render builds a bash script that creates every parent directory and writes
// each file. Paths are written in sorted order.
func Render(files map[string]string, opts RenderOptions) (string, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		if err := checkPath(p); err != nil {
			return "", err
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	data := scriptData{
		Timestamp:   now.Format(time.RFC3339),
		EnvVars:     opts.EnvVars,
		Directories: parentDirs(paths),
	}
	for _, p := range paths {
		body := files[p]
		if body != "" && !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
		data.Files = append(data.Files, scriptFile{Path: p, Body: body, Delimiter: delimiterFor(body)})
	}

	var b strings.Builder
	if err := installTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render install script: %w", err)
	}
	return b.String(), nil
}

func checkPath(p string) error {
	if p == "" || path.IsAbs(p) || strings.HasPrefix(p, "~") {
		return fmt.Errorf("%w: %q", ErrUnsafePath, p)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return fmt.Errorf("%w: %q", ErrUnsafePath, p)
		}
	}
	return nil
}

// parentDirs returns every ancestor directory of paths, sorted.
func parentDirs(paths []string) []string {
	set := make(map[string]struct{})
	for _, p := range paths {
		parts := strings.Split(p, "/")
		for i := 1; i < len(parts); i++ {
			set[strings.Join(parts[:i], "/")] = struct{}{}
		}
	}
	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// delimiterFor picks a heredoc delimiter that no line of body equals.
func delimiterFor(body string) string {
	lines := make(map[string]struct{})
	for _, l := range strings.Split(body, "\n") {
		lines[l] = struct{}{}
	}
	d := delimiterBase
	for i := 1; ; i++ {
		if _, clash := lines[d]; !clash {
			return d
		}
		d = fmt.Sprintf("%s_%d", delimiterBase, i)
	}
}
