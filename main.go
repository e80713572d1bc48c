package main

import "github.com/cmmoran/modelgen/cmd"

func main() {
	cmd.Execute()
}
