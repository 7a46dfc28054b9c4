package main

import "github.com/loadline/dispatch/internal/cli"

func main() {
	cli.Execute()
}
