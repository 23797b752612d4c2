package main

import "newsgraph/backend/go/cmd/newsgraph_cli/cmd"

func main() {
	cmd.Execute()
}
