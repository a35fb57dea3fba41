package main

import "github.com/tachiyu/line-mcp-server/cmd"

func main() {
	cmd.Execute()
}
