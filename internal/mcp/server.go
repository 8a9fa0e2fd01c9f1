package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/autord/internal/config"
	"github.com/hpungsan/autord/internal/export"
	"github.com/hpungsan/autord/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"template", "slide", "brief"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"template_create": {
		def:     templateCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTemplateCreate },
	},
	"template_list": {
		def:     templateListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTemplateList },
	},
	"template_get": {
		def:     templateGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTemplateGet },
	},
	"template_update": {
		def:     templateUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTemplateUpdate },
	},
	"template_delete": {
		def:     templateDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTemplateDelete },
	},
	"template_select": {
		def:     templateSelectToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTemplateSelect },
	},
	"template_save_slide": {
		def:     templateSaveSlideToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTemplateSaveSlide },
	},
	"slide_fields": {
		def:     slideFieldsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSlideFields },
	},
	"slide_edit": {
		def:     slideEditToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSlideEdit },
	},
	"slide_export": {
		def:     slideExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSlideExport },
	},
	"brief_parse": {
		def:     briefParseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBriefParse },
	},
	"brief_from_markdown": {
		def:     briefFromMarkdownToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBriefFromMarkdown },
	},
	"brief_export": {
		def:     briefExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBriefExport },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
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
// Tool names follow the pattern "type_action" (e.g., "template_create" → "template").
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

	// Build set of types for O(1) lookup
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	// Collect tools belonging to disabled types
	tools := make([]string, 0)
	for name := range toolRegistry {
		typ := GetTypeForTool(name)
		if typeSet[typ] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with the autord tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(svc *ops.Service, exp *export.Exporter, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"autord",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(svc, exp, cfg)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(svc *ops.Service, exp *export.Exporter, cfg *config.Config, version string) error {
	s := NewServer(svc, exp, cfg, version)
	return server.ServeStdio(s)
}
