package main

import "layout-translator/internal/cli"

func main() {
	cli.Execute()
}
