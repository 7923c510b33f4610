package main

import "github.com/mcoot/handicap-tracker/internal/cli"

func main() {
	cli.Execute()
}
