// Package mcp implements the Model Context Protocol server for exo.
//
// The mcp package provides:
// - An MCP stdio server
// - A load_page tool that runs one request through the page controller
package mcp
