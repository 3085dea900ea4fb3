package main

import "github.com/loog-project/treediff/cmd"

func main() {
	cmd.Execute()
}
