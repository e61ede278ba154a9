package main

import "corvid/internal/app/server"

func main() {
	server.Run()
}
