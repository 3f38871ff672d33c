package main

import "github.com/mejd2001/ai-analyzer/internal/cli"

func main() {
	cli.Execute()
}
