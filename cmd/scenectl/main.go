package main

import "ha-image-scene/internal/cli"

func main() {
	cli.Execute()
}
