package main

import "github.com/vliz-be-opsci/rdfstore/cmd/rdfstore/cmd"

func main() {
	cmd.Execute()
}
