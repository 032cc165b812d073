package main

import "takeoutfix/cmd"

func main() {
	cmd.Execute()
}
