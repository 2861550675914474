package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Soodgit/ai-code-documenter/internal/common/bootstrap"
)

func main() {
	_ = godotenv.Load()

	app, err := bootstrap.NewApp()
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to start api service: %v\n", err))
		os.Exit(1)
	}

	app.Run()
}
