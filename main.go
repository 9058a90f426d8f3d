package main

import "photo-exchange-bot/cmd"

func main() {
	cmd.Run()
}
