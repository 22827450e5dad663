package main

import "github.com/smilesniffer/ticketing-backend/cmd"

func main() {
	cmd.Execute()
}
