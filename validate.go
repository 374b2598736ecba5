package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/gameon-room/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Info describes the room; otherwise Errors holds what
// was wrong with it.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

// validateConfig loads and validates a single room configuration file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.ParseRoomConfig(data, true)
	if errors.Is(err, engine.ErrMalformedConfig) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Directions a player can actually /go
	var walkable []string
	for exit := range config.Exits {
		if _, ok := engine.ExitID(exit); ok {
			walkable = append(walkable, exit)
		}
	}
	sort.Strings(walkable)

	result.Info = append(result.Info, fmt.Sprintf("✓ Name: %s", config.Name))
	if config.FullName != "" {
		result.Info = append(result.Info, fmt.Sprintf("✓ Full name: %s", config.FullName))
	}
	result.Info = append(result.Info, fmt.Sprintf("✓ Commands: %d", len(config.Commands)))
	result.Info = append(result.Info, fmt.Sprintf("✓ Inventory: %d", len(config.Inventory)))
	result.Info = append(result.Info, fmt.Sprintf("✓ Exits: %d (walkable: %s)", len(config.Exits), strings.Join(walkable, ",")))
	if len(config.Exits) == 0 {
		result.Info = append(result.Info, "! No exits: players can only leave through the mediator")
	}

	return result
}

// printResults writes a report and reports whether every file was valid
func printResults(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}

var errInvalidConfigs = errors.New("some configurations have errors")

// runValidate validates the files given as arguments, or every *.json file
// in the config directory when there are none
func runValidate(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
		if err != nil {
			return fmt.Errorf("error finding config files: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no configuration files in %s", cmd.String("config-dir"))
		}
	}

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(file))
	}

	if !printResults(os.Stdout, results) {
		return errInvalidConfigs
	}
	return nil
}
