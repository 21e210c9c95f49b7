package mcp

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var postingSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"title":       map[string]interface{}{"type": "string"},
		"company":     map[string]interface{}{"type": "string"},
		"location":    map[string]interface{}{"type": "string"},
		"url":         map[string]interface{}{"type": "string"},
		"description": map[string]interface{}{"type": "string"},
		"platform":    map[string]interface{}{"type": "string"},
		"posted_date": map[string]interface{}{"type": "string"},
	},
	"required": []string{"title", "company", "url"},
}

// ToolDefinitions contains all available MCP tools
var ToolDefinitions = []Tool{
	{
		Name:        "match_postings",
		Description: "Run the matching pipeline on a batch of postings without delivering anything. Returns each user's selected list with scores and reasons. Postings already shown recently are excluded.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"postings": map[string]interface{}{
					"type":        "array",
					"items":       postingSchema,
					"description": "Postings to match, in source priority order",
				},
				"input_files": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Paths of JSON posting files, used in addition to postings",
				},
				"users": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Only match these usernames (default: all enabled users)",
				},
			},
		},
	},
	{
		Name:        "score_posting",
		Description: "Score a single posting against one user's profile and explain the score.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"username": map[string]interface{}{
					"type":        "string",
					"description": "User whose profile to score against",
				},
				"posting": postingSchema,
			},
			"required": []string{"username", "posting"},
		},
	},
	{
		Name:        "list_users",
		Description: "List configured user profiles with their thresholds and daily caps.",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	},
	{
		Name:        "recently_shown",
		Description: "List postings delivered to a user within the last N days.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"username": map[string]interface{}{
					"type":        "string",
					"description": "User to look up",
				},
				"days": map[string]interface{}{
					"type":        "integer",
					"description": "Window in days (default: engine.recency_window_days)",
				},
			},
			"required": []string{"username"},
		},
	},
	{
		Name:        "forget_posting",
		Description: "Remove a posting from the recency cache so it can be delivered again.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"url": map[string]interface{}{
					"type":        "string",
					"description": "Posting URL",
				},
			},
			"required": []string{"url"},
		},
	},
	{
		Name:        "get_run_history",
		Description: "Get recent pipeline runs and aggregate delivery statistics.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"since_days": map[string]interface{}{
					"type":        "integer",
					"description": "Only include runs from the last N days",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs to return (default: 20)",
				},
			},
		},
	},
}
