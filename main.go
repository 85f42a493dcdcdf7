package main

import "github.com/qrave1/chatline/cmd"

func main() {
	cmd.Execute()
}
