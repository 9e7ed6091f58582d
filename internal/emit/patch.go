package emit

import (
	"fmt"
	"strings"
)

// SourceKind says where a generation started from.
type SourceKind string

const (
	SourceScratch  SourceKind = "scratch"
	SourceTemplate SourceKind = "template"
	SourceRepo     SourceKind = "repo"
)

// Source labels a generation in the patch header.
type Source struct {
	Kind    SourceKind
	RepoURL string
}

// ParseSource maps a request label to a Source. Unknown kinds mean scratch.
func ParseSource(kind, repoURL string) Source {
	switch SourceKind(kind) {
	case SourceTemplate:
		return Source{Kind: SourceTemplate}
	case SourceRepo:
		return Source{Kind: SourceRepo, RepoURL: repoURL}
	}
	return Source{Kind: SourceScratch}
}

func (s Source) header() string {
	switch s.Kind {
	case SourceRepo:
		if s.RepoURL != "" {
			return "# Gitrules configuration patch generated from repository: " + s.RepoURL
		}
		return "# Gitrules configuration patch generated from repository"
	case SourceTemplate:
		return "# Gitrules configuration patch generated from template"
	}
	return "# Gitrules configuration patch generated from scratch"
}

// Patch renders files as new-file hunks against /dev/null, in order.
func Patch(files []File, src Source) string {
	var b strings.Builder
	b.WriteString(src.header() + "\n")
	b.WriteString("# Apply with: patch -p0 < <this-patch>\n")
	b.WriteString("\n")

	for _, f := range files {
		lines := strings.Split(f.Content, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		b.WriteString("--- /dev/null\n")
		fmt.Fprintf(&b, "+++ %s\n", f.Path)
		fmt.Fprintf(&b, "@@ -0,0 +1,%d @@\n", len(lines))
		for _, line := range lines {
			b.WriteString("+" + line + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
