package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/tagdrop/internal/config"
	"github.com/hpungsan/tagdrop/internal/dropdown"
	"github.com/hpungsan/tagdrop/internal/errors"
	"github.com/hpungsan/tagdrop/internal/logger"
	"github.com/hpungsan/tagdrop/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
	svc *dropdown.Service
	log *zap.Logger
}

// NewHandlers creates a new Handlers instance. A nil svc is built over db.
func NewHandlers(db *sql.DB, cfg *config.Config, svc *dropdown.Service, log *zap.Logger) *Handlers {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log = logger.Component(log, "mcp")
	if svc == nil {
		svc = ops.NewService(db, cfg, log)
	}
	return &Handlers{db: db, cfg: cfg, svc: svc, log: log}
}

// Request types for each tool

// RenderRequest represents the arguments for dropdown_render.
type RenderRequest struct {
	Options map[string]any `json:"options,omitempty"`
	ID      any            `json:"id,omitempty"`
}

// LegacyRequest represents the arguments for dropdown_legacy.
type LegacyRequest struct {
	Shim string         `json:"shim"`
	Args map[string]any `json:"args,omitempty"`
}

// RegisterTaxonomyRequest represents the arguments for taxonomy_register.
type RegisterTaxonomyRequest struct {
	Name         string `json:"name"`
	Label        string `json:"label,omitempty"`
	Public       *bool  `json:"public,omitempty"`
	Hierarchical bool   `json:"hierarchical,omitempty"`
}

// ListTaxonomiesRequest represents the arguments for taxonomy_list.
type ListTaxonomiesRequest struct {
	All bool `json:"all,omitempty"`
}

// AddTermRequest represents the arguments for term_add.
type AddTermRequest struct {
	Taxonomy    string `json:"taxonomy,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// ListTermsRequest represents the arguments for term_list.
type ListTermsRequest struct {
	Taxonomy  string `json:"taxonomy,omitempty"`
	OrderBy   string `json:"orderby,omitempty"`
	Order     string `json:"order,omitempty"`
	HideEmpty bool   `json:"hide_empty,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// TermRefRequest addresses a term for term_fetch and term_delete.
type TermRefRequest struct {
	ID       int64  `json:"id,omitempty"`
	Taxonomy string `json:"taxonomy,omitempty"`
	Slug     string `json:"slug,omitempty"`
}

// SetTermCountRequest represents the arguments for term_set_count.
type SetTermCountRequest struct {
	ID    int64 `json:"id"`
	Count *int  `json:"count"`
}

// SaveWidgetRequest represents the arguments for widget_save.
type SaveWidgetRequest struct {
	ID       string         `json:"id,omitempty"`
	Number   int64          `json:"number,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

// WidgetRefRequest addresses a widget for widget_fetch and widget_delete.
type WidgetRefRequest struct {
	ID     string `json:"id,omitempty"`
	Number int64  `json:"number,omitempty"`
}

// ListWidgetsRequest represents the arguments for widget_list.
type ListWidgetsRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// DisplayWidgetRequest represents the arguments for widget_display.
type DisplayWidgetRequest struct {
	ID     string               `json:"id,omitempty"`
	Number int64                `json:"number,omitempty"`
	Args   *dropdown.WidgetArgs `json:"args,omitempty"`
}

// Handler implementations

// HandleRender handles the dropdown_render tool call.
func (h *Handlers) HandleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RenderRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.RenderDropdown(ctx, h.svc, ops.RenderDropdownInput{
		Options: input.Options,
		ID:      input.ID,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleLegacy handles the dropdown_legacy tool call.
func (h *Handlers) HandleLegacy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LegacyRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.RenderLegacy(ctx, h.svc, ops.RenderLegacyInput{
		Shim: input.Shim,
		Args: input.Args,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRegisterTaxonomy handles the taxonomy_register tool call.
func (h *Handlers) HandleRegisterTaxonomy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RegisterTaxonomyRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.RegisterTaxonomy(ctx, h.db, ops.RegisterTaxonomyInput{
		Name:         input.Name,
		Label:        input.Label,
		Public:       input.Public,
		Hierarchical: input.Hierarchical,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListTaxonomies handles the taxonomy_list tool call.
func (h *Handlers) HandleListTaxonomies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListTaxonomiesRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListTaxonomies(ctx, h.db, ops.ListTaxonomiesInput{All: input.All})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleAddTerm handles the term_add tool call.
func (h *Handlers) HandleAddTerm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddTermRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.AddTerm(ctx, h.db, h.cfg, ops.AddTermInput{
		Taxonomy:    input.Taxonomy,
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		Count:       input.Count,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListTerms handles the term_list tool call.
func (h *Handlers) HandleListTerms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListTermsRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListTerms(ctx, h.db, ops.ListTermsInput{
		Taxonomy:  input.Taxonomy,
		OrderBy:   input.OrderBy,
		Order:     input.Order,
		HideEmpty: input.HideEmpty,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetchTerm handles the term_fetch tool call.
func (h *Handlers) HandleFetchTerm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TermRefRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.FetchTerm(ctx, h.db, h.cfg, ops.FetchTermInput{
		ID:       input.ID,
		Taxonomy: input.Taxonomy,
		Slug:     input.Slug,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSetTermCount handles the term_set_count tool call.
func (h *Handlers) HandleSetTermCount(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SetTermCountRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Count == nil {
		return errorResult(errors.NewInvalidRequest("count is required")), nil
	}

	result, err := ops.SetTermCount(ctx, h.db, h.cfg, ops.SetTermCountInput{
		ID:    input.ID,
		Count: *input.Count,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeleteTerm handles the term_delete tool call.
func (h *Handlers) HandleDeleteTerm(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TermRefRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.DeleteTerm(ctx, h.db, ops.DeleteTermInput{
		ID:       input.ID,
		Taxonomy: input.Taxonomy,
		Slug:     input.Slug,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSaveWidget handles the widget_save tool call.
func (h *Handlers) HandleSaveWidget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveWidgetRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SaveWidget(ctx, h.db, h.svc, ops.SaveWidgetInput{
		ID:       input.ID,
		Number:   input.Number,
		Settings: input.Settings,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetchWidget handles the widget_fetch tool call.
func (h *Handlers) HandleFetchWidget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WidgetRefRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.FetchWidget(ctx, h.db, ops.FetchWidgetInput{ID: input.ID, Number: input.Number})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleListWidgets handles the widget_list tool call.
func (h *Handlers) HandleListWidgets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListWidgetsRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListWidgets(ctx, h.db, ops.ListWidgetsInput{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDeleteWidget handles the widget_delete tool call.
func (h *Handlers) HandleDeleteWidget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WidgetRefRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.DeleteWidget(ctx, h.db, ops.DeleteWidgetInput{ID: input.ID, Number: input.Number})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDisplayWidget handles the widget_display tool call.
func (h *Handlers) HandleDisplayWidget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DisplayWidgetRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.DisplayWidget(ctx, h.db, h.svc, ops.DisplayWidgetInput{
		ID:     input.ID,
		Number: input.Number,
		Args:   input.Args,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCleanupOptions handles the options_cleanup tool call.
func (h *Handlers) HandleCleanupOptions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.CleanupLegacyOptions(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	if len(result.Removed) > 0 {
		h.log.Info("legacy options removed", zap.Strings("keys", result.Removed))
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	tErr := errors.As(err)

	errorObj := map[string]any{
		"code":    tErr.Code,
		"message": tErr.Message,
		"status":  tErr.Status,
	}
	if tErr.Code != errors.ErrInternal && len(tErr.Details) > 0 {
		errorObj["details"] = tErr.Details
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
