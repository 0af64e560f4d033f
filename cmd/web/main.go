package main

import "saaskit_backend/internal/app"

func main() {
	app.Run()
}
