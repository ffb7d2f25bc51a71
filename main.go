package main

import "github.com/muzikax/pulse/cmd"

func main() {
	cmd.Execute()
}
