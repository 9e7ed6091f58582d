package recommend

import "strings"

// DefaultUserPrompt is used when a request carries no user focus.
const DefaultUserPrompt = "Pick minimal useful tools for this repo"

const systemPreamble = `You recommend developer tools for a codebase. Read the repository context and pick a minimal set of helpful rules, agents and MCPs from the catalog below.

Hard requirements:
- Output strictly valid JSON. No markdown and no commentary.
- Use only slugs that appear in the catalog.
- Prefer minimal selections: 0 to 2 per category, never more than 3.
- If unsure, return empty arrays.

Selection guidelines:
- Pick items that improve correctness, safety or developer workflow for this codebase.
- Avoid overlap. Do not pick a ruleset together with its own child rules.
- Skip novelty items unless they clearly help.
- Decide only from the repository context and the catalog.

Catalog (one line per item, slug first):
`

const systemShape = `

Return JSON with exactly this shape:
- rules: array of slugs
- agents: array of slugs
- mcps: array of slugs
- rationales (optional): object whose keys are "rules:<slug>", "agents:<slug>" or "mcps:<slug>" and whose values are short one-line reasons.

The repository context (summary, tree and truncated content) and an optional user focus follow. Answer with JSON only.`

// SystemPrompt embeds the formatted catalog in the instructions.
func SystemPrompt(catalogText string) string {
	return systemPreamble + catalogText + systemShape
}

// UserMessage carries the repository context and the optional focus.
func UserMessage(context, userPrompt string) string {
	var b strings.Builder
	b.WriteString("Here is the codebase context (truncated). Choose minimal useful tools from the catalog above.\n\n")
	b.WriteString(context)
	if userPrompt != "" {
		b.WriteString("\n\nUser focus: ")
		b.WriteString(userPrompt)
	}
	return b.String()
}
