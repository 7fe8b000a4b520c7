package main

//go:generate swag init -g cmd/seeder/main.go -o docs

// @title           Movie Catalog Seeder API
// @version         0.1.0
// @description     TMDb catalog seeding, seed state, and read access to the stored catalog.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
