package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/resourcegraph/internal/cli/ui"
	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
	"github.com/conduit-lang/resourcegraph/pkg/web/serializer"
)

func newTypesCommand(global *globalFlags) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "types [type]",
		Short: "List the resource types of the fixture",
		Long: `List the resource types of the fixture with their record counts.

With a type argument, or with --verbose, the key, hidden fields, include
whitelist and relationships of each type are shown.`,
		Example: `  # Summary of every type
  resourcegraph types

  # Details of one type
  resourcegraph types posts`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment(global)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				schema, err := env.types.lookup(args[0])
				if err != nil {
					return err
				}
				describeSchema(out, env, schema)
				return nil
			}

			listTypes(out, env)
			if verbose {
				for _, name := range env.store.Types() {
					schema, _ := env.store.Registry().Get(name)
					fmt.Fprintln(out)
					describeSchema(out, env, schema)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the details of every type")
	return cmd
}

func listTypes(w io.Writer, env *environment) {
	table := ui.NewTable(w, []string{"TYPE", "SCHEMA", "RECORDS", "RELATIONSHIPS"}, &ui.TableOptions{NoColor: color.NoColor})
	for _, name := range env.store.Types() {
		schema, _ := env.store.Registry().Get(name)
		table.AddRow(
			serializer.TypeName(name, env.opts.SingularTypeNames),
			name,
			strconv.Itoa(len(env.store.List(name))),
			strings.Join(relationNames(schema), ", "),
		)
	}
	table.Render()
}

func describeSchema(w io.Writer, env *environment, schema *resource.Schema) {
	ui.Header(w, schema.Name, color.NoColor)

	kv := ui.NewKeyValueTable(w, color.NoColor)
	kv.AddRow("type", serializer.TypeName(schema.Name, env.opts.SingularTypeNames))
	kv.AddRow("key", schema.Key)
	kv.AddRow("records", strconv.Itoa(len(env.store.List(schema.Name))))
	kv.AddRow("hidden", listOrNone(schema.Hidden))
	if schema.Includable == nil {
		kv.AddRow("includable", "any relationship")
	} else {
		kv.AddRow("includable", listOrNone(schema.Includable))
	}
	kv.Render()

	if len(schema.Relations) == 0 {
		return
	}
	fmt.Fprintln(w)
	table := ui.NewTable(w, []string{"RELATIONSHIP", "KIND", "TARGET"}, &ui.TableOptions{NoColor: color.NoColor})
	for _, name := range relationNames(schema) {
		rel := schema.Relations[name]
		table.AddRow(name, rel.Type.String(), rel.Target)
	}
	table.Render()
}

func relationNames(schema *resource.Schema) []string {
	names := make([]string, 0, len(schema.Relations))
	for name := range schema.Relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func listOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
