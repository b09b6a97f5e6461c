package main

import "example.com/healthdash/internal/cli"

func main() {
	cli.Execute()
}
