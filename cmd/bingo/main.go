package main

import "github.com/mcoot/bingogame-go/internal/cli"

func main() {
	cli.Execute()
}
