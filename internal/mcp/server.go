// Package mcp exposes the exploration store as Model Context Protocol
// tools, so an agent can page through candidates, like them, re-cluster
// and follow associations. Served over stdio by cmd/explorer -mcp.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/danielpatrickdp/viewspace/internal/explore"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Store     *explore.Store
	Version   string // version string for MCP server info
	MaxGroups int    // default for explore_cluster
	UseRemote bool   // default for explore_cluster
}

// NewServer creates an MCP server with all exploration tools and the state resource.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"viewspace",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	registerStateTool(s, cfg.Store)
	registerPageTool(s, cfg.Store)
	registerLikeTool(s, cfg.Store)
	registerClusterTool(s, cfg)
	registerFocusTool(s, cfg.Store)
	registerAssociationsTool(s, cfg.Store)
	registerSelectAssociationTool(s, cfg.Store)

	registerStateResource(s, cfg.Store)

	return s
}

// --- Tools ---

// pageView is the compact summary returned after navigation.
type pageView struct {
	Page      int         `json:"page"`
	Total     int         `json:"total"`
	Liked     bool        `json:"liked"`
	Candidate interface{} `json:"candidate,omitempty"`
	Status    interface{} `json:"status"`
}

func currentPage(st *explore.Store) pageView {
	snap := st.Snapshot()
	v := pageView{
		Page:   snap.CurrentPage,
		Total:  len(snap.ViewSpaces),
		Liked:  st.IsLiked(snap.CurrentPage),
		Status: snap.Status,
	}
	if c, ok := st.Current(); ok {
		v.Candidate = c
	}
	return v
}

func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

func registerStateTool(s *server.MCPServer, st *explore.Store) {
	tool := mcp.NewTool("explore_state",
		mcp.WithDescription("Show the current page, page count, clustering status and likes of the exploration session."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap := st.Snapshot()
		return jsonResult(map[string]interface{}{
			"source":           snap.Source,
			"session_id":       snap.SessionID,
			"page":             currentPage(st),
			"candidates":       len(snap.Candidates),
			"groups":           len(snap.Groups),
			"mode":             snap.Mode,
			"loading":          snap.Loading,
			"likes":            snap.Likes,
			"association_open": snap.AssociationOpen,
		}), nil
	})
}

func registerPageTool(s *server.MCPServer, st *explore.Store) {
	tool := mcp.NewTool("explore_page",
		mcp.WithDescription("Move between pages. Page numbers wrap around in both directions."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("next, last, or goto"),
			mcp.Enum("next", "last", "goto"),
		),
		mcp.WithNumber("page",
			mcp.Description("1-based page number for goto"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		action, err := req.RequireString("action")
		if err != nil {
			return mcp.NewToolResultError("action is required"), nil
		}
		switch action {
		case "next":
			st.NextPage()
		case "last":
			st.LastPage()
		case "goto":
			p, err := req.RequireFloat("page")
			if err != nil {
				return mcp.NewToolResultError("page is required for goto"), nil
			}
			st.GoToDisplayPage(fmt.Sprintf("%d", int(p)))
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
		}
		return jsonResult(currentPage(st)), nil
	})
}

func registerLikeTool(s *server.MCPServer, st *explore.Store) {
	tool := mcp.NewTool("explore_like",
		mcp.WithDescription("Toggle the like on the current page. Liking a liked page removes the like."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		liked, ok := st.LikeCurrent()
		if !ok {
			return mcp.NewToolResultError("no pages to like"), nil
		}
		return jsonResult(map[string]interface{}{
			"page":  st.Snapshot().CurrentPage,
			"liked": liked,
			"total": len(st.Likes()),
		}), nil
	})
}

func registerClusterTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("explore_cluster",
		mcp.WithDescription("Re-cluster all candidates into groups of near-duplicates; pages become one representative per group."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("max_groups",
			mcp.Description(fmt.Sprintf("Maximum number of groups, 0 for no cap (default: %d)", cfg.MaxGroups)),
		),
		mcp.WithBoolean("use_remote",
			mcp.Description(fmt.Sprintf("Use the remote clustering service, falling back to local on failure (default: %v)", cfg.UseRemote)),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		maxGroups := cfg.MaxGroups
		if v, err := req.RequireFloat("max_groups"); err == nil {
			maxGroups = int(v)
		}
		if maxGroups < 0 {
			return mcp.NewToolResultError("max_groups must be >= 0"), nil
		}
		useRemote := cfg.UseRemote
		if v, err := req.RequireBool("use_remote"); err == nil {
			useRemote = v
		}

		report, err := cfg.Store.ClusterMeasures(ctx, maxGroups, useRemote)
		if err != nil {
			if errors.Is(err, explore.ErrClusteringFailed) {
				log.Printf("[MCP] cluster: %v", err)
			}
			return mcp.NewToolResultError(fmt.Sprintf("clustering failed, previous pages kept: %v", err)), nil
		}
		return jsonResult(map[string]interface{}{
			"report": report,
			"page":   currentPage(cfg.Store),
		}), nil
	})
}

func registerFocusTool(s *server.MCPServer, st *explore.Store) {
	tool := mcp.NewTool("explore_focus",
		mcp.WithDescription("Choose the candidate whose associations are ranked. The focus follows the page again after the next page change."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Candidate index"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		idx, err := req.RequireFloat("index")
		if err != nil {
			return mcp.NewToolResultError("index is required"), nil
		}
		if !st.SelectFocus(int(idx)) {
			return mcp.NewToolResultError(fmt.Sprintf("no candidate with index %d", int(idx))), nil
		}
		focus, _ := st.Focus()
		return jsonResult(focus), nil
	})
}

func registerAssociationsTool(s *server.MCPServer, st *explore.Store) {
	tool := mcp.NewTool("explore_associations",
		mcp.WithDescription("Rank subspaces related to the focus candidate by shared fields and field statistics."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: all)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		results := st.Associations()
		if v, err := req.RequireFloat("limit"); err == nil && int(v) > 0 && int(v) < len(results) {
			results = results[:int(v)]
		}
		focus, _ := st.Focus()
		return jsonResult(map[string]interface{}{
			"focus":   focus,
			"results": results,
		}), nil
	})
}

func registerSelectAssociationTool(s *server.MCPServer, st *explore.Store) {
	tool := mcp.NewTool("explore_select_association",
		mcp.WithDescription("Jump to the page showing a candidate from the association results."),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("view_index",
			mcp.Required(),
			mcp.Description("Candidate index from an association result"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		idx, err := req.RequireFloat("view_index")
		if err != nil {
			return mcp.NewToolResultError("view_index is required"), nil
		}
		if !st.SelectAssociation(int(idx)) {
			return mcp.NewToolResultError(fmt.Sprintf("candidate %d is not on any page", int(idx))), nil
		}
		return jsonResult(currentPage(st)), nil
	})
}

// --- Resources ---

func registerStateResource(s *server.MCPServer, st *explore.Store) {
	resource := mcp.NewResource(
		"viewspace://state",
		"Exploration State",
		mcp.WithResourceDescription("Full exploration state: candidates, pages, groups, likes and status."),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.MarshalIndent(st.Snapshot(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding state: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
