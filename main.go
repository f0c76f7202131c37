package main

import "pixsort/cmd"

func main() {
	cmd.Execute()
}
