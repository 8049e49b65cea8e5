package mcp

import "github.com/mark3labs/mcp-go/mcp"

var renderToolDef = mcp.NewTool("dropdown_render",
	mcp.WithDescription("Render a tag dropdown from a raw options bag. Unknown keys are ignored and invalid values fall back to defaults. Returns the <select> markup, or no_terms when nothing would be shown."),
	mcp.WithObject("options",
		mcp.Description("Options bag: taxonomy, select_name, max_name_length, cutoff, limit, order (ASC|DESC), orderby (name|count), threshold, incexc (include|exclude), incexc_ids, hide_empty, post_counts"),
	),
	mcp.WithString("id",
		mcp.Description("Instance id: a positive number or a slug. Sets the select's DOM id."),
	),
)

var legacyToolDef = mcp.NewTool("dropdown_legacy",
	mcp.WithDescription("Render through a deprecated entry point. The markup is prefixed with a deprecation notice comment."),
	mcp.WithString("shim",
		mcp.Required(),
		mcp.Description("Legacy entry point"),
		mcp.Enum("generate_tag_dropdown", "tdw_direct", "make_tag_dropdown"),
	),
	mcp.WithObject("args",
		mcp.Description("generate_tag_dropdown: options bag. tdw_direct: limit, count, exclude. make_tag_dropdown: limit."),
	),
)

var registerTaxonomyToolDef = mcp.NewTool("taxonomy_register",
	mcp.WithDescription("Register a taxonomy, or replace the label and flags of an existing one."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Lowercase name: letters, digits, underscore, hyphen"),
	),
	mcp.WithString("label", mcp.Description("Display label (default: name)")),
	mcp.WithBoolean("public", mcp.Description("Whether the taxonomy is public (default: true)")),
	mcp.WithBoolean("hierarchical", mcp.Description("Hierarchical taxonomies cannot back a dropdown")),
)

var listTaxonomiesToolDef = mcp.NewTool("taxonomy_list",
	mcp.WithDescription("List the taxonomies a dropdown may use."),
	mcp.WithBoolean("all", mcp.Description("Include private, hierarchical and reserved taxonomies")),
)

var addTermToolDef = mcp.NewTool("term_add",
	mcp.WithDescription("Add a term to a taxonomy. The slug is derived from the name when omitted and must be unique in the taxonomy."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Term name")),
	mcp.WithString("taxonomy", mcp.Description("Taxonomy (default: post_tag)")),
	mcp.WithString("slug", mcp.Description("URL slug")),
	mcp.WithString("description", mcp.Description("Markdown description")),
	mcp.WithNumber("count", mcp.Description("Number of objects the term is assigned to")),
)

var listTermsToolDef = mcp.NewTool("term_list",
	mcp.WithDescription("List the terms of a taxonomy."),
	mcp.WithString("taxonomy", mcp.Description("Taxonomy (default: post_tag)")),
	mcp.WithString("orderby", mcp.Description("Sort field"), mcp.Enum("name", "count")),
	mcp.WithString("order", mcp.Description("Sort direction"), mcp.Enum("ASC", "DESC")),
	mcp.WithBoolean("hide_empty", mcp.Description("Skip terms with a zero count")),
	mcp.WithNumber("limit", mcp.Description("Max items (default: 20, max: 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var fetchTermToolDef = mcp.NewTool("term_fetch",
	mcp.WithDescription("Fetch a term by id, or by taxonomy and slug."),
	mcp.WithNumber("id", mcp.Description("Term id")),
	mcp.WithString("taxonomy", mcp.Description("Taxonomy (default: post_tag)")),
	mcp.WithString("slug", mcp.Description("Term slug")),
)

var setTermCountToolDef = mcp.NewTool("term_set_count",
	mcp.WithDescription("Set how many objects a term is assigned to."),
	mcp.WithNumber("id", mcp.Required(), mcp.Description("Term id")),
	mcp.WithNumber("count", mcp.Required(), mcp.Description("New count")),
)

var deleteTermToolDef = mcp.NewTool("term_delete",
	mcp.WithDescription("Delete a term by id, or by taxonomy and slug."),
	mcp.WithNumber("id", mcp.Description("Term id")),
	mcp.WithString("taxonomy", mcp.Description("Taxonomy (default: post_tag)")),
	mcp.WithString("slug", mcp.Description("Term slug")),
)

var saveWidgetToolDef = mcp.NewTool("widget_save",
	mcp.WithDescription("Create or update a dropdown widget. Settings are sanitized and replace the stored ones. A missing title becomes \"Tags\"."),
	mcp.WithString("id", mcp.Description("Widget id (update only)")),
	mcp.WithNumber("number", mcp.Description("Widget number: updates an existing widget or creates one with this number")),
	mcp.WithObject("settings", mcp.Description("Options bag plus title")),
)

var fetchWidgetToolDef = mcp.NewTool("widget_fetch",
	mcp.WithDescription("Fetch a widget by id or number."),
	mcp.WithString("id", mcp.Description("Widget id")),
	mcp.WithNumber("number", mcp.Description("Widget number")),
)

var listWidgetsToolDef = mcp.NewTool("widget_list",
	mcp.WithDescription("List widgets ordered by number."),
	mcp.WithNumber("limit", mcp.Description("Max items (default: 20, max: 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var deleteWidgetToolDef = mcp.NewTool("widget_delete",
	mcp.WithDescription("Delete a widget by id or number."),
	mcp.WithString("id", mcp.Description("Widget id")),
	mcp.WithNumber("number", mcp.Description("Widget number")),
)

var displayWidgetToolDef = mcp.NewTool("widget_display",
	mcp.WithDescription("Render a stored widget with its sidebar wrapper. Empty when the widget has no terms to show."),
	mcp.WithString("id", mcp.Description("Widget id")),
	mcp.WithNumber("number", mcp.Description("Widget number")),
	mcp.WithObject("args", mcp.Description("Wrapper markup: before_widget, after_widget, before_title, after_title")),
)

var cleanupOptionsToolDef = mcp.NewTool("options_cleanup",
	mcp.WithDescription("Remove settings stored by old releases. Safe to run repeatedly."),
)
