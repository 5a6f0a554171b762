// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"support-bot/pkg/registry"
)

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	var registryPath string
	for _, set := range []*flag.FlagSet{addCmd, updateCmd, validateCmd, listCmd} {
		set.StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")
	}

	idAdd := addCmd.String("id", "", "Activity ID (e.g., dialogue-get-response)")
	displayName := addCmd.String("displayName", "", "Display Name")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "dialogue", "Category")
	taskType := addCmd.String("taskType", "", "Camunda Task Type")
	version := addCmd.String("version", "1.0.0", "Version")
	implStatus := addCmd.String("status", registry.StatusPlanned, "Implementation Status (planned, in-progress, completed, verified)")

	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, timeout, retries, ...)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *taskType == "" {
			fmt.Println("Error: id, displayName and taskType are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		reg, err := loadOrSeed(registryPath)
		exitOn(err)
		exitOn(reg.Add(registry.Activity{
			ID:                   *idAdd,
			DisplayName:          *displayName,
			Description:          *description,
			Category:             *category,
			Version:              *version,
			TaskType:             *taskType,
			ImplementationStatus: *implStatus,
			InputSchema:          map[string]interface{}{},
			OutputSchema:         map[string]interface{}{},
			ErrorCodes:           []string{},
			Timeout:              "10s",
			Tags:                 []string{},
		}))
		exitOn(reg.Save(registryPath))
		fmt.Printf("Added activity: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		reg, err := registry.LoadRegistry(registryPath)
		exitOn(err)
		exitOn(reg.Update(*idUpdate, *field, *value))
		exitOn(reg.Save(registryPath))
		fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(registryPath)
		exitOn(err)
		if err := reg.Validate(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	case "list":
		listCmd.Parse(os.Args[2:])
		reg, err := loadOrSeed(registryPath)
		exitOn(err)
		for _, a := range reg.Activities {
			fmt.Printf("%-28s %-12s %-10s %s\n", a.TaskType, a.ImplementationStatus, a.Timeout, a.DisplayName)
		}

	default:
		help()
	}
}

// loadOrSeed falls back to the built-in registry when path does not exist yet.
func loadOrSeed(path string) (*registry.ActivityRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if errors.Is(err, fs.ErrNotExist) {
		return registry.Default()
	}
	return reg, err
}

func exitOn(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file
  list     List registered activities
  help     Show this help message

Examples:
  registry-updater list
  registry-updater update -id dialogue-reset-context -field status -value verified
  registry-updater validate -path configs/activity-registry.json`)
}
