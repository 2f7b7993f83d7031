package main

import "github.com/framekit/walletwidget/cmd"

func main() {
	cmd.Execute()
}
