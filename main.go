package main

import "github.com/Ilan9903/Juris-IA/cmd"

func main() {
	cmd.Execute()
}
