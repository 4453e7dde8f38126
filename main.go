package main

import "github.com/relloyd/snowxfer/cmd"

func main() {
	cmd.Execute()
}
