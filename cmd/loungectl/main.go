package main

import "github.com/openmahjong/lounge-go/internal/cli"

func main() {
	cli.Execute()
}
