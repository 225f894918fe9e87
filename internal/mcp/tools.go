package mcp

import "github.com/mark3labs/mcp-go/mcp"

var ingestToolDef = mcp.NewTool("bundle_ingest",
	mcp.WithDescription("Ingest one or more .zip creative bundles from disk. Each archive becomes a self-contained HTML document with every asset inlined as a data URI. Archives are processed in order; a failing archive is reported per item and never stops the rest. The last successful archive becomes the selected bundle."),
	mcp.WithArray("paths",
		mcp.Required(),
		mcp.Description("Paths to .zip archives"),
		mcp.WithStringItems(),
	),
)

var listToolDef = mcp.NewTool("bundle_list",
	mcp.WithDescription("List bundles in ingestion order (oldest first) with dimensions and asset counts. Never returns document HTML."),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip (default 0)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var searchToolDef = mcp.NewTool("bundle_search",
	mcp.WithDescription("Fuzzy-search bundle names. Results are ranked best match first."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Characters to match in order, e.g. \"lb728\"")),
	mcp.WithNumber("limit", mcp.Description("Maximum results (default 20, max 100)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var fetchToolDef = mcp.NewTool("bundle_fetch",
	mcp.WithDescription("Fetch one bundle: metadata, asset list, unresolved references and the self-contained HTML. Omit id to fetch the selected bundle."),
	mcp.WithString("id", mcp.Description("Bundle ID (default: the selected bundle)")),
	mcp.WithBoolean("include_html", mcp.Description("Include the document HTML (default true)")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var selectToolDef = mcp.NewTool("bundle_select",
	mcp.WithDescription("Make a bundle the selected one."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Bundle ID")),
)

var selectedToolDef = mcp.NewTool("bundle_selected",
	mcp.WithDescription("Report the selected bundle, or null when the collection is empty."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var deleteToolDef = mcp.NewTool("bundle_delete",
	mcp.WithDescription("Remove a bundle. Deleting the selected bundle selects the most recently ingested remaining one."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Bundle ID")),
	mcp.WithDestructiveHintAnnotation(true),
)

var clearToolDef = mcp.NewTool("bundle_clear",
	mcp.WithDescription("Remove every bundle and clear the selection."),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
	mcp.WithDestructiveHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("bundle_export",
	mcp.WithDescription("Write a bundle's document to <name>.html. The default location is ~/.preview/exports; other directories must be listed in allowed_paths."),
	mcp.WithString("id", mcp.Description("Bundle ID (default: the selected bundle)")),
	mcp.WithString("path", mcp.Description("Target .html file (default: ~/.preview/exports/<name>.html)")),
)

var copyToolDef = mcp.NewTool("bundle_copy",
	mcp.WithDescription("Copy a bundle's document HTML to the system clipboard."),
	mcp.WithString("id", mcp.Description("Bundle ID (default: the selected bundle)")),
)

var inferToolDef = mcp.NewTool("bundle_infer",
	mcp.WithDescription("Infer a display name and pixel dimensions without storing anything. Pass either a path (.html or .zip) or raw html."),
	mcp.WithString("path", mcp.Description("Path to an .html document or .zip archive")),
	mcp.WithString("html", mcp.Description("Raw document text")),
	mcp.WithString("filename", mcp.Description("Filename hint used with html, e.g. \"banner_300x250.html\"")),
	mcp.WithReadOnlyHintAnnotation(true),
)
