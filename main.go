package main

import "github.com/frahmantamala/hardware-marketplace/cmd"

func main() {
	cmd.Execute()
}
