// Command sanai is a terminal client for the San AI assistant.
package main

import "github.com/diogo/sanai/internal/commands"

func main() {
	commands.Execute()
}
