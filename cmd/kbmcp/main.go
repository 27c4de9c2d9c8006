// Command kbmcp is the knowledge base server entrypoint: an MCP stdio
// server by default, or a REST server with --rest.
package main

func main() {
	Execute()
}
