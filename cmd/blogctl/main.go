package main

import "blogmodapk-backend/cmd/blogctl/commands"

func main() {
	commands.Execute()
}
