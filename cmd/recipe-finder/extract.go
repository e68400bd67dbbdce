// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recipe-finder/internal/schema"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract the schema script payload from an HTML document",
	Long: `Extract scans an HTML document for the first script element whose body
mentions schema or a Recipe type and prints the element's body. Reads
from stdin when no file (or -) is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

// readDocument returns the contents of the file argument, or stdin for
// no argument or "-".
func readDocument(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	doc, err := readDocument(args)
	if err != nil {
		return err
	}
	payload, err := schema.Extract(doc)
	if err != nil {
		return err
	}
	fmt.Println(payload)
	return nil
}
