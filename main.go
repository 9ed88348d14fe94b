package main

import "github.com/mj1618/desktop-focus/cmd"

func main() {
	cmd.Execute()
}
