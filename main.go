package main

import "github.com/KaramelBytes/dfstats-cli/cmd"

func main() {
	cmd.Execute()
}
