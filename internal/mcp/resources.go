package mcp

import (
	"bytes"
	"context"
	"fmt"

	"github.com/vijay-prabhu/jobmatch/internal/database"
	"github.com/vijay-prabhu/jobmatch/internal/output"
)

// Resource defines an MCP resource
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceDefinitions lists all available resources
var ResourceDefinitions = []Resource{
	{
		URI:         "jobmatch://users",
		Name:        "User Profiles",
		Description: "Configured users with thresholds and daily caps",
		MimeType:    "text/plain",
	},
	{
		URI:         "jobmatch://cache",
		Name:        "Recency Cache",
		Description: "Cache statistics followed by every remembered posting",
		MimeType:    "text/plain",
	},
	{
		URI:         "jobmatch://history",
		Name:        "Run History",
		Description: "Totals and the last 10 pipeline runs",
		MimeType:    "text/plain",
	},
}

// resourcesListResult is the response for resources/list
type resourcesListResult struct {
	Resources []Resource `json:"resources"`
}

// readResourceParams is the params for resources/read
type readResourceParams struct {
	URI string `json:"uri"`
}

// readResourceResult is the response for resources/read
type readResourceResult struct {
	Contents []resourceContent `json:"contents"`
}

type resourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// handleReadResource renders a resource with the same tables the CLI prints
func (s *Server) handleReadResource(ctx context.Context, uri string) (string, error) {
	var buf bytes.Buffer

	switch uri {
	case "jobmatch://users":
		users, err := s.loadUsers()
		if err != nil {
			return "", err
		}
		if err := output.TableTo(&buf, users); err != nil {
			return "", err
		}

	case "jobmatch://cache":
		cache := s.loadCache(ctx)
		if err := output.TableTo(&buf, cache.Stats()); err != nil {
			return "", err
		}
		buf.WriteString("\n")
		if err := output.TableTo(&buf, cache.Entries()); err != nil {
			return "", err
		}

	case "jobmatch://history":
		if s.db == nil {
			return "", fmt.Errorf("run history is not available")
		}
		stats, err := s.db.GetRunStats(ctx, nil)
		if err != nil {
			return "", fmt.Errorf("database error: %w", err)
		}
		runs, err := s.db.ListMatchRuns(ctx, database.RunListOptions{Limit: 10})
		if err != nil {
			return "", fmt.Errorf("database error: %w", err)
		}
		if err := output.TableTo(&buf, stats); err != nil {
			return "", err
		}
		buf.WriteString("\n")
		if err := output.TableTo(&buf, runs); err != nil {
			return "", err
		}

	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}

	return buf.String(), nil
}
