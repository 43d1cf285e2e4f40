package main

import "github.com/ihsan606/win-store/cmd"

func main() {
	cmd.Execute()
}
