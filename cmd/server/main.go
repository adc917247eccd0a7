package main

import "github.com/PetMap-Recife/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
