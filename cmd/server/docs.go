package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Trader Journal Analytics API
// @version         0.1.0
// @description     Pattern mining, pre-trade reminders, draft checks, and monthly reports.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
