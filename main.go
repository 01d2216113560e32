// Package main serves as the entry point for the swiftscope application.
// SwiftScope parses Swift source into lossless syntax trees, extracts
// declaration outlines, applies token-addressed edits and serves the
// whole surface to CLI users, background workers and MCP clients.
package main

import "swiftscope/cmd"

func main() {
	cmd.Execute()
}
