package main

import "github.com/chriserin/metascrape/cmd"

func main() {
	cmd.Execute()
}
