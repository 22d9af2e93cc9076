package main

import "deja-vocab/internal/cli"

func main() {
	cli.Main()
}
