// Package tools provides the tool catalog and MCP (Model Context Protocol)
// integration for the power switch server.
//
// It is organized into sub-packages:
//   - [github.com/pdu-tools/powerswitch-mcp/pkg/tools/toolbox] — Tool type and ToolBox orchestrator for registering, listing, and calling tools
//   - [github.com/pdu-tools/powerswitch-mcp/pkg/tools/powertools] — the outlet, metering, and AutoPing tools exposed by the server
//   - [github.com/pdu-tools/powerswitch-mcp/pkg/tools/mcpserver] — MCP server using the official MCP Go SDK for exposing tools over stdio or streamable HTTP
//
// The toolbox sub-package is the foundation layer: powertools builds a
// catalog of tools, and mcpserver serves that catalog over the MCP protocol.
// The mcpserver package is a thin wrapper around the official MCP Go SDK
// (github.com/modelcontextprotocol/go-sdk).
package tools
