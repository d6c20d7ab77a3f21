package main

import "github.com/boozedog/corsserve/cmd"

func main() {
	cmd.Execute()
}
