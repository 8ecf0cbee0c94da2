package main

import "github.com/tessro/moodplay/internal/cli"

func main() {
	cli.Execute()
}
