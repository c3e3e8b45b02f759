package main

import "bugdash/internal/cli"

func main() {
	cli.Execute()
}
