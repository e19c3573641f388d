// Command mcpcore runs the embeddable MCP protocol engine as a standalone
// process, serving over stdio or HTTP per its configuration.
package main

import "github.com/mcpcore/server/cmd/mcpcore/cmd"

func main() {
	cmd.Execute()
}
