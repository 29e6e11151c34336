package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cuemby/corenode/pkg/modules"
	"github.com/spf13/cobra"
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Manage modules in the content-addressed repository",
}

var moduleAddCmd = &cobra.Command{
	Use:   "add <wasm-file>",
	Short: "Add a module to the repository, printing its content hash",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleAdd,
}

var moduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List modules in the repository",
	Args:  cobra.NoArgs,
	RunE:  runModuleList,
}

var moduleInterfaceCmd = &cobra.Command{
	Use:   "interface <hash>",
	Short: "Print a module's parsed interface",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleInterface,
}

var moduleAddName string
var moduleAddConfigFile string

func init() {
	moduleAddCmd.Flags().StringVar(&moduleAddName, "name", "", "logical name stored alongside the module (required)")
	moduleAddCmd.Flags().StringVar(&moduleAddConfigFile, "config-file", "", "JSON file with the module's opaque config payload")
	_ = moduleAddCmd.MarkFlagRequired("name")

	moduleCmd.AddCommand(moduleAddCmd, moduleListCmd, moduleInterfaceCmd)
}

func openRepository() *modules.Repository {
	return modules.New(cfg.ModulesDir, cfg.BlueprintsDir, nil)
}

func runModuleAdd(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var payload interface{}
	if moduleAddConfigFile != "" {
		configBytes, err := os.ReadFile(moduleAddConfigFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", moduleAddConfigFile, err)
		}
		if err := json.Unmarshal(configBytes, &payload); err != nil {
			return fmt.Errorf("parsing %s: %w", moduleAddConfigFile, err)
		}
	}

	repo := openRepository()
	hexHash, err := repo.AddModule(base64.StdEncoding.EncodeToString(raw), modules.ModuleConfig{
		Name:   moduleAddName,
		Config: payload,
	})
	if err != nil {
		return err
	}
	fmt.Println(hexHash)
	return nil
}

func runModuleList(cmd *cobra.Command, args []string) error {
	entries := openRepository().ListModules()
	if len(entries) == 0 {
		fmt.Println("no modules")
		return nil
	}
	for _, e := range entries {
		if e.Error != "" {
			fmt.Printf("%-16s  ERROR: %s\n", e.InvalidFileName, e.Error)
			continue
		}
		fmt.Printf("%-16s  %s\n", e.Name, e.Hash)
	}
	return nil
}

func runModuleInterface(cmd *cobra.Command, args []string) error {
	raw, err := openRepository().GetInterface(args[0])
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
