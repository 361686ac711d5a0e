package main

import "github.com/vietddude/ethalive/internal/cli"

func main() {
	cli.Execute()
}
