package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/ittop-club/secret-santa-bot/cmd/app"
)

// @securityDefinitions.apikey AdminToken
// @in header
// @name Authorization
// @description Static admin bearer token
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
