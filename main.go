package main

import "github.com/KaramelBytes/crystaleda-cli/cmd"

func main() {
	cmd.Execute()
}
