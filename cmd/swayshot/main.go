package main

import "github.com/bryanchriswhite/swayshot/cmd/swayshot/commands"

func main() {
	commands.Execute()
}
