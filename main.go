package main

import "github.com/PawelBis/transaction-system/cmd"

func main() {
	cmd.Execute()
}
