package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcelsud/webhook-dispatch/eventtypes"
)

/* validate-event-types - Standalone CLI tool to validate an event types file
 * Usage: go run cmd/validate-event-types/main.go [event-types.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	file := "event-types.yaml"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	fmt.Printf("Validating event types file: %s\n", file)
	fmt.Println(strings.Repeat("-", 50))

	catalog, err := eventtypes.Load(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	types := catalog.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d event type(s):\n", len(types))

	for i, et := range types {
		fmt.Printf("\n%d. %s\n", i+1, et.Name)
		if et.Description != "" {
			fmt.Printf("   %s\n", et.Description)
		}
	}

	fmt.Printf("\n✓ All event types are valid!\n")
	os.Exit(0)
}
