// Command function runs the Cloud Functions locally through the functions framework.
package main

import (
	"log"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"

	// Registers GenerateDocument and CleanupDocuments
	_ "github.com/pep299/pdf-generator-api"
)

func main() {
	// FUNCTION_TARGET selects the function, GenerateDocument by default
	if os.Getenv("FUNCTION_TARGET") == "" {
		os.Setenv("FUNCTION_TARGET", "GenerateDocument")
	}

	port := "8080"
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}

	log.Printf("Starting function %s on port %s", os.Getenv("FUNCTION_TARGET"), port)
	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v", err)
	}
}
