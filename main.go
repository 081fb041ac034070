package main

import "github.com/mkrogh/explorerwatch/internal/cli"

func main() {
	cli.Execute()
}
