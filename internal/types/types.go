package types

import "github.com/gitrules/gitrules/internal/ranking"

type ActionChild struct {
	Id     string      `json:"id"`
	Action *ActionItem `json:"action,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type ActionChildrenResponse struct {
	Id       string        `json:"id"`
	Children []ActionChild `json:"children"`
}

type ActionItem struct {
	Id            string         `json:"id"`
	Name          string         `json:"name"`
	DisplayName   string         `json:"display_name,omitempty"`
	ActionType    string         `json:"action_type"`
	Tags          []string       `json:"tags"`
	EffectiveTags []string       `json:"effective_tags,omitempty"`
	Content       string         `json:"content,omitempty"`
	Config        map[string]any `json:"config,omitempty"`
	Children      []string       `json:"children,omitempty"`
	Author        string         `json:"author,omitempty"`
	Namespace     string         `json:"namespace,omitempty"`
	Filename      string         `json:"filename,omitempty"`
	Description   string         `json:"description,omitempty"`
}

type ActionPreviewResponse struct {
	Id          string         `json:"id"`
	ActionType  string         `json:"action_type"`
	Title       string         `json:"title"`
	FrontMatter map[string]any `json:"front_matter,omitempty"`
	Html        string         `json:"html"`
}

type BatchAgentsResponse struct {
	Agents []BatchItem `json:"agents"`
}

type BatchIdsRequest struct {
	Ids string `path:"ids"`
}

type BatchItem struct {
	Id          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	DisplayName string         `json:"display_name,omitempty"`
	ActionType  string         `json:"action_type,omitempty"`
	Content     string         `json:"content,omitempty"`
	Filename    string         `json:"filename,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	Error       string         `json:"error,omitempty"`
}

type BatchMCPsResponse struct {
	Mcps []BatchItem `json:"mcps"`
}

type BatchRulesResponse struct {
	Rules []BatchItem `json:"rules"`
}

type CatalogEntry struct {
	Slug        string   `json:"slug"`
	DisplayName string   `json:"display_name"`
	Type        string   `json:"type,omitempty"`
	Tags        []string `json:"tags"`
}

type CatalogResponse struct {
	Version  string         `json:"version"`
	LoadedAt string         `json:"loaded_at"`
	Counts   map[string]int `json:"counts"`
	Agents   []CatalogEntry `json:"agents"`
	Rules    []CatalogEntry `json:"rules"`
	Mcps     []CatalogEntry `json:"mcps"`
}

type GenerateRequest struct {
	ActionIds []string `json:"action_ids"`
	Formats   []string `json:"formats,omitempty"`
	Source    string   `json:"source,omitempty"`
	RepoUrl   string   `json:"repo_url,omitempty"`
}

type GenerateResponse struct {
	Files   map[string]string `json:"files"`
	Paths   []string          `json:"paths"`
	Patch   string            `json:"patch"`
	Source  string            `json:"source"`
	EnvVars []string          `json:"env_vars"`
}

type GetActionRequest struct {
	Id string `path:"id"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Actions   int    `json:"actions"`
}

type ListActionsRequest struct {
	ActionType string `form:"action_type"`
	Tags       string `form:"tags"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

type ListActionsResponse struct {
	Actions []ActionItem `json:"actions"`
	Total   int          `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
	HasMore bool         `json:"has_more"`
}

type RecommendRequest struct {
	RepoUrl    string `json:"repo_url,omitempty"`
	Context    string `json:"context,omitempty"`
	UserPrompt string `json:"user_prompt,omitempty"`
}

type RecommendResponse struct {
	Success        bool               `json:"success"`
	Preselect      RecommendSelection `json:"preselect"`
	Rationales     map[string]string  `json:"rationales"`
	ContextSize    int                `json:"context_size"`
	CatalogVersion string             `json:"catalog_version"`
	Raw            string             `json:"raw"`
}

type RecommendSelection struct {
	Rules  []string `json:"rules"`
	Agents []string `json:"agents"`
	Mcps   []string `json:"mcps"`
}

type ReloadResponse struct {
	Total       int            `json:"total"`
	Counts      map[string]int `json:"counts"`
	Diagnostics []string       `json:"diagnostics"`
	LoadedAt    string         `json:"loaded_at"`
}

type RuleNode struct {
	Id          string     `json:"id"`
	Name        string     `json:"name,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	ActionType  string     `json:"action_type,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Children    []RuleNode `json:"children,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type ScriptRequest struct {
	Files map[string]string `json:"files"`
}

type ScriptResponse struct {
	Hash string `json:"hash"`
	Url  string `json:"url"`
}

type SearchAllResponse struct {
	Agents []ranking.Result `json:"agents"`
	Rules  []ranking.Result `json:"rules"`
	Mcps   []ranking.Result `json:"mcps"`
}

type SearchRequest struct {
	Query string `form:"query"`
	Limit int    `form:"limit"`
}

type SearchResponse struct {
	Results []ranking.Result `json:"results"`
}

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type TagsResponse struct {
	Tags []TagCount `json:"tags"`
}

type TopLevelRulesResponse struct {
	Rules []RuleNode `json:"rules"`
}

type ToggleMCPRequest struct {
	McpId          string `json:"mcp_id"`
	ExistingConfig any    `json:"existing_config"`
}

type ToggleMCPResponse struct {
	Content string         `json:"content"`
	Config  map[string]any `json:"config"`
	Removed bool           `json:"removed"`
	EnvVars []string       `json:"env_vars"`
}
