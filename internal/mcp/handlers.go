package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/autord/internal/config"
	"github.com/hpungsan/autord/internal/editor"
	"github.com/hpungsan/autord/internal/errors"
	"github.com/hpungsan/autord/internal/export"
	"github.com/hpungsan/autord/internal/layout"
	"github.com/hpungsan/autord/internal/metrics"
	"github.com/hpungsan/autord/internal/ops"
	"github.com/hpungsan/autord/internal/slide"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	svc *ops.Service
	exp *export.Exporter
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *ops.Service, exp *export.Exporter, cfg *config.Config) *Handlers {
	return &Handlers{svc: svc, exp: exp, cfg: cfg}
}

// Request types for each tool

// TemplateCreateRequest represents the arguments for template_create.
type TemplateCreateRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Format      *ops.Format      `json:"format,omitempty"`
	Variables   []ops.Variable   `json:"variables,omitempty"`
	SlideData   *slide.SlideData `json:"slide_data,omitempty"`
}

// TemplateListRequest represents the arguments for template_list.
type TemplateListRequest struct {
	IncludeBuiltin bool `json:"include_builtin,omitempty"`
	Limit          int  `json:"limit,omitempty"`
	Offset         int  `json:"offset,omitempty"`
}

// TemplateGetRequest represents the arguments for template_get.
type TemplateGetRequest struct {
	ID          string `json:"id"`
	IncludePptx bool   `json:"include_pptx,omitempty"`
}

// TemplateUpdateRequest represents the arguments for template_update.
type TemplateUpdateRequest struct {
	ID          string           `json:"id"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Format      *ops.Format      `json:"format,omitempty"`
	Variables   *[]ops.Variable  `json:"variables,omitempty"`
	SlideData   *slide.SlideData `json:"slide_data,omitempty"`
}

// TemplateIDRequest represents the arguments for template_delete and template_select.
type TemplateIDRequest struct {
	ID string `json:"id,omitempty"`
}

// SaveSlideRequest represents the arguments for template_save_slide.
type SaveSlideRequest struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name,omitempty"`
	Description string           `json:"description,omitempty"`
	SlideData   *slide.SlideData `json:"slide_data"`
}

// SlideFieldsRequest represents the arguments for slide_fields.
type SlideFieldsRequest struct {
	Layout string `json:"layout"`
}

// SlideEditRequest represents the arguments for slide_edit and slide_export.
type SlideEditRequest struct {
	SlideData *slide.SlideData `json:"slide_data,omitempty"`
	Ops       []editor.Op      `json:"ops,omitempty"`
}

// BriefParseRequest represents the arguments for brief_parse.
type BriefParseRequest struct {
	Text string `json:"text"`
}

// BriefFromMarkdownRequest represents the arguments for brief_from_markdown.
type BriefFromMarkdownRequest struct {
	Markdown string `json:"markdown"`
}

// BriefExportRequest represents the arguments for brief_export.
type BriefExportRequest struct {
	Brief json.RawMessage `json:"brief,omitempty"`
	Text  string          `json:"text,omitempty"`
}

// Output types

// SlideFieldsOutput lists the editable fields of a layout.
type SlideFieldsOutput struct {
	Layout     slide.Layout   `json:"layout"`
	Fields     []layout.Field `json:"fields"`
	ListFields []layout.Field `json:"list_fields"`
}

// SlideEditOutput is the edited document.
type SlideEditOutput struct {
	SlideData slide.SlideData `json:"slide_data"`
	Fields    []layout.Field  `json:"fields"`
}

// ArtifactOutput describes an exported presentation.
type ArtifactOutput struct {
	FileName string `json:"file_name"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
	DataURI  string `json:"data_uri"`
}

// BriefOutput is a parsed brief and its editable slide form.
type BriefOutput struct {
	Brief     slide.Brief     `json:"brief"`
	SlideData slide.SlideData `json:"slide_data"`
	Source    string          `json:"source"`
}

// Handler implementations

// HandleTemplateCreate handles the template_create tool call.
func (h *Handlers) HandleTemplateCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Create(ctx, ops.CreateInput{
		Name:        input.Name,
		Description: input.Description,
		Format:      input.Format,
		Variables:   input.Variables,
		SlideData:   input.SlideData,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTemplateList handles the template_list tool call.
func (h *Handlers) HandleTemplateList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.List(ctx, ops.ListInput{
		IncludeBuiltin: input.IncludeBuiltin,
		Limit:          input.Limit,
		Offset:         input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTemplateGet handles the template_get tool call.
func (h *Handlers) HandleTemplateGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Get(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	if !input.IncludePptx {
		summary := result.Summary()
		result = &summary
	}
	return successResult(result)
}

// HandleTemplateUpdate handles the template_update tool call.
func (h *Handlers) HandleTemplateUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Update(ctx, ops.UpdateInput{
		ID:          input.ID,
		Name:        input.Name,
		Description: input.Description,
		Format:      input.Format,
		Variables:   input.Variables,
		SlideData:   input.SlideData,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result.Summary())
}

// HandleTemplateDelete handles the template_delete tool call.
func (h *Handlers) HandleTemplateDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateIDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.svc.Delete(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTemplateSelect handles the template_select tool call. Without an
// id it reports the current selection.
func (h *Handlers) HandleTemplateSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TemplateIDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var result *ops.Template
	if input.ID == "" {
		result, err = h.svc.Selected(ctx)
	} else {
		result, err = h.svc.Select(ctx, input.ID)
	}
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result.Summary())
}

// HandleTemplateSaveSlide handles the template_save_slide tool call.
func (h *Handlers) HandleTemplateSaveSlide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveSlideRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.SlideData == nil {
		return errorResult(errors.NewInvalidRequest("slide_data is required")), nil
	}

	result, err := h.svc.SaveSlide(ctx, ops.SaveSlideInput{
		ID:          input.ID,
		Name:        input.Name,
		Description: input.Description,
		SlideData:   *input.SlideData,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result.Summary())
}

// HandleSlideFields handles the slide_fields tool call.
func (h *Handlers) HandleSlideFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SlideFieldsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	l, ok := slide.ParseLayout(input.Layout)
	if !ok {
		return errorResult(errors.NewInvalidRequest("unknown layout: " + input.Layout)), nil
	}
	out := SlideFieldsOutput{Layout: l, Fields: layout.FieldsFor(l), ListFields: []layout.Field{}}
	for _, f := range out.Fields {
		if layout.IsListField(f) {
			out.ListFields = append(out.ListFields, f)
		}
	}
	return successResult(out)
}

// HandleSlideEdit handles the slide_edit tool call.
func (h *Handlers) HandleSlideEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SlideEditRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if len(input.Ops) == 0 {
		return errorResult(errors.NewInvalidRequest("ops is required")), nil
	}

	doc, err := h.edit(input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(SlideEditOutput{SlideData: doc, Fields: layout.FieldsFor(doc.Layout)})
}

// HandleSlideExport handles the slide_export tool call.
func (h *Handlers) HandleSlideExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SlideEditRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.SlideData == nil {
		return errorResult(errors.NewInvalidRequest("slide_data is required")), nil
	}

	doc, err := h.edit(input)
	if err != nil {
		return errorResult(err), nil
	}
	if err := doc.Validate(); err != nil {
		return errorResult(err), nil
	}
	a, err := h.exp.Export(ctx, doc)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(artifactOutput(a))
}

// HandleBriefParse handles the brief_parse tool call.
func (h *Handlers) HandleBriefParse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BriefParseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	b, ok := slide.ParseBrief(input.Text)
	metrics.RecordBrief(slide.SourceJSON, ok)
	if !ok {
		return errorResult(errors.NewUnparseable("brief text")), nil
	}
	return successResult(BriefOutput{Brief: b, SlideData: b.SlideData(), Source: slide.SourceJSON})
}

// HandleBriefFromMarkdown handles the brief_from_markdown tool call.
func (h *Handlers) HandleBriefFromMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BriefFromMarkdownRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	b, ok := slide.FromMarkdown(input.Markdown, h.cfg.Thresholds())
	metrics.RecordBrief(slide.SourceMarkdown, ok)
	if !ok {
		return errorResult(errors.NewUnparseable("markdown")), nil
	}
	return successResult(BriefOutput{Brief: b, SlideData: b.SlideData(), Source: slide.SourceMarkdown})
}

// HandleBriefExport handles the brief_export tool call.
func (h *Handlers) HandleBriefExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BriefExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	b, source, err := slide.ResolveBrief(input.Brief, input.Text, h.cfg.Thresholds())
	if source != "" {
		metrics.RecordBrief(source, err == nil)
	}
	if err != nil {
		return errorResult(err), nil
	}
	a, err := h.exp.ExportBrief(ctx, b)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(artifactOutput(a))
}

func (h *Handlers) edit(input SlideEditRequest) (slide.SlideData, error) {
	doc := slide.Default()
	if input.SlideData != nil {
		doc = *input.SlideData
	}
	if len(input.Ops) == 0 {
		return doc, nil
	}
	return editor.ApplyOps(doc, input.Ops)
}

func artifactOutput(a *export.Artifact) ArtifactOutput {
	return ArtifactOutput{
		FileName: a.FileName,
		MIMEType: a.MIMEType,
		Size:     len(a.Bytes),
		DataURI:  a.DataURI(),
	}
}

// errorResult creates an MCP error result from an error.
// Wrapped coded errors keep their wrapper context in the message.
func errorResult(err error) *mcp.CallToolResult {
	e := errors.As(err)
	errorObj := map[string]any{
		"code":    e.Code,
		"message": e.Message,
		"status":  e.Status,
	}
	if e.Code != errors.ErrInternal {
		if err != error(e) {
			errorObj["message"] = err.Error()
		}
		// INTERNAL details carry paths and driver errors; never expose them.
		if e.Details != nil {
			errorObj["details"] = e.Details
		}
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
