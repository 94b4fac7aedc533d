package main

import "github.com/gridfleet/seabattle/internal/cli"

func main() {
	cli.Execute()
}
