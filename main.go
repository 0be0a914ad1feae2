package main

import "github.com/KaramelBytes/esgloom-cli/cmd"

func main() {
	cmd.Execute()
}
