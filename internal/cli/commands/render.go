package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/resourcegraph/internal/cli/ui"
	"github.com/conduit-lang/resourcegraph/internal/store"
	"github.com/conduit-lang/resourcegraph/pkg/web/query"
	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
	"github.com/conduit-lang/resourcegraph/pkg/web/serializer"
)

type renderFlags struct {
	include      []string
	fields       []string
	page         int
	pageSize     int
	relationship bool
	baseURL      string
	compact      bool
	interactive  bool
}

func newRenderCommand(global *globalFlags) *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render <type> [id [relation]]",
		Short: "Render a JSON:API document from the fixture",
		Long: `Render a JSON:API document from the fixture and print it to stdout.

With only a type the whole collection is rendered, or a single page of it
when --page or --page-size is given. With an id the single resource is
rendered. With an id and a relation the related resources are rendered, or
the bare linkage when --relationship is set.`,
		Example: `  # Render a post with its author and comment authors
  resourcegraph render posts 1 --include author,comments.creator

  # Only the title of each post
  resourcegraph render posts --fields posts=title

  # Second page of two posts
  resourcegraph render posts --page 2 --page-size 2

  # Linkage of a relationship
  resourcegraph render posts 1 comments --relationship

  # Pick the type, id and includes from prompts
  resourcegraph render --interactive`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !flags.interactive {
				return fmt.Errorf("resource type required\n\nUsage: resourcegraph render <type> [id [relation]]")
			}

			env, err := loadEnvironment(global)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				if args, err = promptRenderArgs(env, flags); err != nil {
					return err
				}
			}

			doc, err := renderDocument(env, args, flags)
			if err != nil {
				return err
			}

			out, err := encodeDocument(doc, flags.compact)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&flags.include, "include", "i", nil, "Relationship paths to include, comma separated")
	cmd.Flags().StringArrayVar(&flags.fields, "fields", nil, "Sparse fieldset as type=field,field (repeatable)")
	cmd.Flags().IntVar(&flags.page, "page", 0, "Page number of a paged collection")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 0, "Page size of a paged collection")
	cmd.Flags().BoolVar(&flags.relationship, "relationship", false, "Render relationship linkage instead of related resources")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "Base URL of pagination links (default /<type>)")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "Print compact JSON")
	cmd.Flags().BoolVar(&flags.interactive, "interactive", false, "Prompt for the type, id and includes")

	return cmd
}

// promptRenderArgs asks for a type, an optional id and, for a single
// resource, the relationships to include
func promptRenderArgs(env *environment, flags *renderFlags) ([]string, error) {
	var typeName string
	if err := survey.AskOne(&survey.Select{
		Message: "Resource type:",
		Options: env.types.names,
	}, &typeName); err != nil {
		return nil, err
	}

	var id string
	if err := survey.AskOne(&survey.Input{
		Message: "Record id (empty for the collection):",
	}, &id); err != nil {
		return nil, err
	}
	if id == "" {
		return []string{typeName}, nil
	}

	schema, err := env.types.lookup(typeName)
	if err != nil {
		return nil, err
	}
	if relations := relationNames(schema); len(relations) > 0 && len(flags.include) == 0 {
		if err := survey.AskOne(&survey.MultiSelect{
			Message: "Include:",
			Options: relations,
		}, &flags.include); err != nil {
			return nil, err
		}
	}
	return []string{typeName, id}, nil
}

func renderDocument(env *environment, args []string, flags *renderFlags) (*serializer.Document, error) {
	schema, err := env.types.lookup(args[0])
	if err != nil {
		return nil, err
	}

	fields, err := parseFieldsFlags(flags.fields)
	if err != nil {
		return nil, err
	}
	if err := query.ValidateInclude(flags.include); err != nil {
		return nil, renderFailure(schema, err)
	}

	typeName := serializer.TypeName(schema.Name, env.opts.SingularTypeNames)
	b := serializer.New(env.opts).NewBuilder()

	if len(args) == 1 {
		if flags.page == 0 && flags.pageSize == 0 {
			err = b.Collection(env.store.List(schema.Name), fields, flags.include)
			return build(b, schema, err)
		}

		page := pageFromFlags(flags, env)
		records, total := env.store.Slice(schema.Name, page.Offset(), page.Size)
		page.Total = total

		baseURL := flags.baseURL
		if baseURL == "" {
			baseURL = "/" + typeName
		}
		err = b.Page(records, page, baseURL, fields, flags.include)
		return build(b, schema, err)
	}

	record, err := env.store.Find(schema.Name, args[1])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, display(ui.RecordNotFoundError(typeName, args[1], color.NoColor), err)
		}
		return nil, err
	}

	switch {
	case len(args) == 3 && flags.relationship:
		err = b.Relationship(record, args[2])
	case len(args) == 3:
		err = b.Related(record, args[2], fields)
	default:
		err = b.Resource(record, fields, flags.include)
	}
	return build(b, schema, err)
}

func build(b *serializer.Builder, schema *resource.Schema, err error) (*serializer.Document, error) {
	if err != nil {
		return nil, renderFailure(schema, err)
	}
	return b.Build(), nil
}

// renderFailure formats a builder error, suggesting relations of the primary
// schema when a path could not be resolved
func renderFailure(schema *resource.Schema, err error) error {
	var suggestions []string
	if path, ok := serializer.PathOf(err); ok {
		names := make([]string, 0, len(schema.Relations))
		for name := range schema.Relations {
			names = append(names, name)
		}
		sort.Strings(names)
		suggestions = ui.FindSimilar(path, names, &ui.FuzzyMatchOptions{MaxDistance: 2})
	}
	return display(ui.RenderError(err.Error(), suggestions, color.NoColor), err)
}

func pageFromFlags(flags *renderFlags, env *environment) serializer.Page {
	limits := env.config.PageLimits()

	size := flags.pageSize
	if size < 1 {
		size = limits.DefaultSize
	}
	if limits.MaxSize > 0 && size > limits.MaxSize {
		size = limits.MaxSize
	}
	return serializer.NewPage(flags.page, size, 0)
}

// parseFieldsFlags turns "posts=title,body" values into a sparse fieldset. An
// empty list after the equals sign selects no attributes.
func parseFieldsFlags(values []string) (map[string][]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	fields := make(map[string][]string, len(values))
	for _, value := range values {
		typeName, list, ok := strings.Cut(value, "=")
		if !ok || typeName == "" {
			return nil, fmt.Errorf("invalid --fields value %q, expected type=field,field", value)
		}

		names := []string{}
		for _, name := range strings.Split(list, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
		if existing, ok := fields[typeName]; ok {
			names = append(existing, names...)
		}
		fields[typeName] = names
	}
	return fields, nil
}

func encodeDocument(doc *serializer.Document, compact bool) ([]byte, error) {
	data, err := serializer.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if compact {
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
