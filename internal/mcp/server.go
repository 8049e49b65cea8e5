package mcp

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/tagdrop/internal/config"
	"github.com/hpungsan/tagdrop/internal/dropdown"
	"github.com/hpungsan/tagdrop/internal/logger"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"dropdown", "taxonomy", "term", "widget", "options"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"dropdown_render": {
		def:     renderToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRender },
	},
	"dropdown_legacy": {
		def:     legacyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLegacy },
	},
	"taxonomy_register": {
		def:     registerTaxonomyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRegisterTaxonomy },
	},
	"taxonomy_list": {
		def:     listTaxonomiesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListTaxonomies },
	},
	"term_add": {
		def:     addTermToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAddTerm },
	},
	"term_list": {
		def:     listTermsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListTerms },
	},
	"term_fetch": {
		def:     fetchTermToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetchTerm },
	},
	"term_set_count": {
		def:     setTermCountToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSetTermCount },
	},
	"term_delete": {
		def:     deleteTermToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeleteTerm },
	},
	"widget_save": {
		def:     saveWidgetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSaveWidget },
	},
	"widget_fetch": {
		def:     fetchWidgetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetchWidget },
	},
	"widget_list": {
		def:     listWidgetsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListWidgets },
	},
	"widget_delete": {
		def:     deleteWidgetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeleteWidget },
	},
	"widget_display": {
		def:     displayWidgetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDisplayWidget },
	},
	"options_cleanup": {
		def:     cleanupOptionsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCleanupOptions },
	},
}

// AllToolNames returns all valid tool names in sorted order.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "term_add" → "term").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	sort.Strings(tools)
	return tools
}

// NewServer creates a new MCP server with the tagdrop tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, svc *dropdown.Service, log *zap.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tagdrop",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, svc, log)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	registered := 0
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
		registered++
	}
	h.log.Debug("tools registered", zap.Int(logger.FieldCount, registered))

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, svc *dropdown.Service, log *zap.Logger, version string) error {
	s := NewServer(db, cfg, svc, log, version)
	return server.ServeStdio(s)
}
