package main

import (
	"fmt"
	"os"

	"github.com/chronocop/chronocop/internal/config"
	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("Checking configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf(".env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Configuration invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("Configuration valid.")
	fmt.Printf("  - Listen Addr: %s\n", cfg.ListenAddr)
	fmt.Printf("  - Data Dir: %s\n", cfg.DataDir)
	fmt.Printf("  - Narrative Provider: %s\n", cfg.Narrative.Provider)
	fmt.Printf("  - Narrative Model: %s\n", cfg.Narrative.Model)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}
