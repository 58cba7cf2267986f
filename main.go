package main

import "tourzen-backend/cmd"

func main() {
	cmd.Run()
}
