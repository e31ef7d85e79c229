package main

import "github.com/rise-and-shine/gallery/cmd/gallery/cmd"

func main() {
	cmd.Execute()
}
