package mcp

import "github.com/mark3labs/mcp-go/mcp"

const slideDataDesc = "SlideData document: layout, title, subtitle, bulletPoints, columnOnePoints, columnTwoPoints, imageDescription, quote, attribution, notes, elements"

var templateCreateToolDef = mcp.NewTool("template_create",
	mcp.WithDescription("Create a user slide template. Returns the stored template with its generated id."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Template name")),
	mcp.WithString("description", mcp.Description("Free-form description (markdown)")),
	mcp.WithObject("format", mcp.Description("Generator format: layout, numPoints, includeSupportingData, includeConclusion, visualStyle")),
	mcp.WithArray("variables", mcp.Description("Template variables: id, name, description, type (text|number|list|image), defaultValue"),
		mcp.Items(map[string]any{"type": "object"})),
	mcp.WithObject("slide_data", mcp.Description(slideDataDesc)),
)

var templateListToolDef = mcp.NewTool("template_list",
	mcp.WithDescription("List template summaries in stored order. Stored pptx data is omitted."),
	mcp.WithBoolean("include_builtin", mcp.Description("Prepend the built-in templates")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 50, max 500)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var templateGetToolDef = mcp.NewTool("template_get",
	mcp.WithDescription("Get a user or built-in template by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Template id")),
	mcp.WithBoolean("include_pptx", mcp.Description("Include the stored pptx data URI (default false)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var templateUpdateToolDef = mcp.NewTool("template_update",
	mcp.WithDescription("Update fields of a user template. Omitted fields are unchanged. Built-in templates are read-only."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Template id")),
	mcp.WithString("name", mcp.Description("New name")),
	mcp.WithString("description", mcp.Description("New description")),
	mcp.WithObject("format", mcp.Description("Replacement format")),
	mcp.WithArray("variables", mcp.Description("Replacement variable list"), mcp.Items(map[string]any{"type": "object"})),
	mcp.WithObject("slide_data", mcp.Description("Replacement document; clears the stored pptx")),
)

var templateDeleteToolDef = mcp.NewTool("template_delete",
	mcp.WithDescription("Delete a user template. If it was selected, the selection falls back to the first built-in."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Template id")),
	mcp.WithDestructiveHintAnnotation(true),
)

var templateSelectToolDef = mcp.NewTool("template_select",
	mcp.WithDescription("Select a template, or return the current selection when id is omitted."),
	mcp.WithString("id", mcp.Description("Template id to select")),
)

var templateSaveSlideToolDef = mcp.NewTool("template_save_slide",
	mcp.WithDescription("Export a SlideData document and store it with its pptx on a new or existing user template."),
	mcp.WithObject("slide_data", mcp.Required(), mcp.Description(slideDataDesc)),
	mcp.WithString("id", mcp.Description("Existing user template to overwrite")),
	mcp.WithString("name", mcp.Description("Name for a new template (default: slide title)")),
	mcp.WithString("description", mcp.Description("Description for a new template")),
)

var slideFieldsToolDef = mcp.NewTool("slide_fields",
	mcp.WithDescription("List the editable fields of a layout in display order."),
	mcp.WithString("layout", mcp.Required(), mcp.Enum("title", "content", "twoColumn", "imageText", "quote", "custom")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var slideEditToolDef = mcp.NewTool("slide_edit",
	mcp.WithDescription("Apply editing operations to a SlideData document and return the result. Operations apply in order; if one fails none are kept."),
	mcp.WithObject("slide_data", mcp.Description("Document to edit (default: the starter content slide)")),
	mcp.WithArray("ops", mcp.Required(),
		mcp.Description("Operations: set_field, set_list, set_layout, append_bullet, update_bullet, remove_bullet, add_element, remove_element, update_element, move"),
		mcp.Items(map[string]any{"type": "object"})),
	mcp.WithReadOnlyHintAnnotation(true),
)

var slideExportToolDef = mcp.NewTool("slide_export",
	mcp.WithDescription("Export a SlideData document as a one-slide pptx. Returns the file as a data URI."),
	mcp.WithObject("slide_data", mcp.Required(), mcp.Description(slideDataDesc)),
	mcp.WithArray("ops", mcp.Description("Editing operations applied before export"), mcp.Items(map[string]any{"type": "object"})),
	mcp.WithReadOnlyHintAnnotation(true),
)

var briefParseToolDef = mcp.NewTool("brief_parse",
	mcp.WithDescription("Parse generated text into a brief (title, subtitle, mainPoints, conclusion, visualSuggestion). JSON is found inside surrounding prose."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Generated text")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var briefFromMarkdownToolDef = mcp.NewTool("brief_from_markdown",
	mcp.WithDescription("Derive a brief from prose markdown using headings, bullets, and paragraphs."),
	mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown text")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var briefExportToolDef = mcp.NewTool("brief_export",
	mcp.WithDescription("Export a brief as a one-slide pptx. Pass either a brief object or generated text."),
	mcp.WithObject("brief", mcp.Description("Brief object")),
	mcp.WithString("text", mcp.Description("Generated text; parsed as JSON, then as markdown")),
	mcp.WithReadOnlyHintAnnotation(true),
)
