package main

import (
	"fmt"
	"strings"

	"github.com/cuemby/corenode/pkg/modules"
	"github.com/spf13/cobra"
)

var blueprintCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "Manage blueprints, ordered lists of module dependencies",
}

var blueprintAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a blueprint, printing its id",
	Args:  cobra.NoArgs,
	RunE:  runBlueprintAdd,
}

var blueprintListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blueprints",
	Args:  cobra.NoArgs,
	RunE:  runBlueprintList,
}

var blueprintResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Resolve a blueprint's dependencies to module descriptors",
	Args:  cobra.ExactArgs(1),
	RunE:  runBlueprintResolve,
}

var blueprintAddName string
var blueprintAddDeps []string

func init() {
	blueprintAddCmd.Flags().StringVar(&blueprintAddName, "name", "", "blueprint name (required)")
	blueprintAddCmd.Flags().StringArrayVar(&blueprintAddDeps, "dep", nil, "dependency, as hash:<hex> or name:<name>; repeatable, order matters")
	_ = blueprintAddCmd.MarkFlagRequired("name")

	blueprintCmd.AddCommand(blueprintAddCmd, blueprintListCmd, blueprintResolveCmd)
}

func parseDependency(spec string) (modules.Dependency, error) {
	kind, value, ok := strings.Cut(spec, ":")
	if !ok {
		return modules.Dependency{}, fmt.Errorf("invalid --dep %q, want hash:<hex> or name:<name>", spec)
	}
	switch kind {
	case "hash":
		return modules.Dependency{Hash: &value}, nil
	case "name":
		return modules.DependencyName(value), nil
	default:
		return modules.Dependency{}, fmt.Errorf("invalid --dep %q, want hash:<hex> or name:<name>", spec)
	}
}

func runBlueprintAdd(cmd *cobra.Command, args []string) error {
	deps := make([]modules.Dependency, 0, len(blueprintAddDeps))
	for _, spec := range blueprintAddDeps {
		dep, err := parseDependency(spec)
		if err != nil {
			return err
		}
		deps = append(deps, dep)
	}

	id, err := openRepository().AddBlueprint(modules.AddBlueprintRequest{
		Name:         blueprintAddName,
		Dependencies: deps,
	})
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func runBlueprintList(cmd *cobra.Command, args []string) error {
	blueprints := openRepository().GetBlueprints()
	if len(blueprints) == 0 {
		fmt.Println("no blueprints")
		return nil
	}
	for _, bp := range blueprints {
		fmt.Printf("%-16s  %s  (%d dependencies)\n", bp.Name, bp.ID, len(bp.Dependencies))
	}
	return nil
}

func runBlueprintResolve(cmd *cobra.Command, args []string) error {
	descriptors, err := openRepository().ResolveBlueprint(args[0])
	if err != nil {
		return err
	}
	for _, d := range descriptors {
		fmt.Printf("%-16s  %s\n", d.Name, d.Hash.Hex())
	}
	return nil
}
