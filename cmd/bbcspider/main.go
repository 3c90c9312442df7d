package main

import (
	cmd "github.com/elielzinsou/bbc-learning-english-podcast-spider/internal/cli"
)

func main() {
	cmd.Execute()
}
