package main

import (
	"fmt"
	"os"

	"github.com/debemdeboas/composer/internal/config"
	"gopkg.in/yaml.v3"
)

const header = `# Composer configuration example
# Copy this file to config.yaml and customize as needed.
# S3 credentials are read from S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY (a .env file works).

`

func main() {
	yamlData, err := yaml.Marshal(config.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}
	output := header + string(yamlData)

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(output)
		return
	}

	if err := os.WriteFile(outputFile, []byte(output), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
