package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listUnitsTool defines the list_units MCP tool.
var listUnitsTool = mcp.NewTool("list_units",
	mcp.WithDescription("List the conversion pages and their units or prefixes, with the backend identifier of each supported one."),
	mcp.WithString("page",
		mcp.Description("Page id to list (default: every page)"),
	),
)

// unitInfoTool defines the unit_info MCP tool.
var unitInfoTool = mcp.NewTool("unit_info",
	mcp.WithDescription("Describe a unit or prefix: name, symbol, magnification or dimension, and description."),
	mcp.WithString("unit",
		mcp.Required(),
		mcp.Description("Circle label (e.g. \"km\") or display name (e.g. \"킬로\")"),
	),
	mcp.WithString("page",
		mcp.Description("Page id (default: the configured default page)"),
	),
)

// convertUnitsTool defines the convert_units MCP tool.
var convertUnitsTool = mcp.NewTool("convert_units",
	mcp.WithDescription("Convert a value from one unit or prefix to another using the conversion backend. Returns the result and the formula used."),
	mcp.WithString("from",
		mcp.Required(),
		mcp.Description("Source circle label or display name"),
	),
	mcp.WithString("to",
		mcp.Required(),
		mcp.Description("Target circle label or display name"),
	),
	mcp.WithString("value",
		mcp.Required(),
		mcp.Description("Value to convert"),
	),
	mcp.WithString("page",
		mcp.Description("Page id (default: the configured default page)"),
	),
)
