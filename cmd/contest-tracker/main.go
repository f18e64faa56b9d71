package main

import "github.com/pfrederiksen/contest-tracker/internal/cli"

func main() {
	cli.Execute()
}
