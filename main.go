package main

import "github.com/StiliyanIliev27/Memora/cmd"

func main() {
	cmd.Run()
}
