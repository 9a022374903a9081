// Command cyclectl is the admin CLI of the cycle bot: schema migrations,
// trigger tokens, one-off dispatcher ticks and the MCP stdio server.
package main

func main() {
	Execute()
}
