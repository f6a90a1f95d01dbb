package main

import (
	"context"
	"log"

	"github.com/MrSnakeDoc/serene/internal/app"
)

func main() {
	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("❌ serene failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ serene stopped with error: %v", err)
	}
}
