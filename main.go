package main

import "github.com/abacus-network/abacus/relayer/cmd"

func main() {
	cmd.Execute()
}
