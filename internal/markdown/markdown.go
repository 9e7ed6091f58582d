// Package markdown renders action content to HTML for previews.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

var md goldmark.Markdown

func init() {
	md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // tables, strikethrough, autolinks, task lists
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			// Raw HTML in catalog content is dropped, not passed through.
		),
	)
}

// Render converts markdown content to HTML with GFM extensions, syntax
// highlighting and target="_blank" on external links.
func Render(content string) string {
	if content == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return processExternalLinks(buf.String())
}

// CodeBlock renders code as a highlighted fenced block.
func CodeBlock(lang, code string) string {
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	return Render(fence + lang + "\n" + strings.TrimRight(code, "\n") + "\n" + fence + "\n")
}

var frontMatterRe = regexp.MustCompile(`\A---\r?\n([\s\S]*?)\r?\n---[ \t]*(?:\r?\n|\z)`)

// SplitFrontMatter separates a leading YAML front matter block from the body.
// Content without front matter, or with front matter that is not a YAML
// mapping, is returned unchanged with nil meta.
func SplitFrontMatter(content string) (map[string]any, string) {
	m := frontMatterRe.FindStringSubmatchIndex(content)
	if m == nil {
		return nil, content
	}
	var meta map[string]any
	if err := yaml.Unmarshal([]byte(content[m[2]:m[3]]), &meta); err != nil || meta == nil {
		return nil, content
	}
	return meta, content[m[1]:]
}

var linkRe = regexp.MustCompile(`<a href="(https?://[^"]*)"`)

// processExternalLinks adds target="_blank" rel="noopener noreferrer" to external links.
func processExternalLinks(s string) string {
	return linkRe.ReplaceAllStringFunc(s, func(match string) string {
		return match + ` target="_blank" rel="noopener noreferrer"`
	})
}
