package main

import "mygrid/cmd"

func main() {
	cmd.Execute()
}
