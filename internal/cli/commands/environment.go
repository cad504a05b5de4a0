package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/conduit-lang/resourcegraph/internal/cli/config"
	"github.com/conduit-lang/resourcegraph/internal/cli/ui"
	"github.com/conduit-lang/resourcegraph/internal/store"
	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
	"github.com/conduit-lang/resourcegraph/pkg/web/serializer"
)

// environment is the loaded configuration and fixture a command runs against
type environment struct {
	config *config.Config
	opts   serializer.Options
	store  *store.Store
	types  *typeIndex
}

func loadEnvironment(flags *globalFlags) (*environment, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, display(ui.ConfigError(err.Error(), nil, color.NoColor), err)
	}

	if flags.fixture != "" {
		cfg.Fixture = flags.fixture
	}
	if cfg.Fixture == "" {
		err := errors.New("no fixture configured")
		return nil, display(ui.ConfigError(
			"No fixture file configured. Set 'fixture' in resourcegraph.yaml or pass --fixture.",
			nil, color.NoColor), err)
	}

	opts, err := cfg.SerializerOptions()
	if err != nil {
		return nil, display(ui.ConfigError(err.Error(), nil, color.NoColor), err)
	}

	st, err := store.Load(cfg.Fixture)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, display(ui.ConfigError(fmt.Sprintf("Fixture file '%s' does not exist.", cfg.Fixture), nil, color.NoColor), err)
		}
		return nil, fmt.Errorf("failed to load fixture %s: %w", cfg.Fixture, err)
	}

	return &environment{
		config: cfg,
		opts:   opts,
		store:  st,
		types:  newTypeIndex(st.Registry(), opts.SingularTypeNames),
	}, nil
}

// typeIndex resolves command line type arguments. Both the rendered type
// ("blog-posts") and the declared schema name ("BlogPost") are accepted.
type typeIndex struct {
	byName map[string]*resource.Schema
	names  []string
}

func newTypeIndex(registry *resource.Registry, singular bool) *typeIndex {
	idx := &typeIndex{byName: make(map[string]*resource.Schema)}
	for _, name := range registry.List() {
		schema, _ := registry.Get(name)
		typeName := serializer.TypeName(name, singular)
		idx.byName[typeName] = schema
		idx.byName[name] = schema
		idx.names = append(idx.names, typeName)
	}
	return idx
}

func (idx *typeIndex) lookup(arg string) (*resource.Schema, error) {
	if schema, ok := idx.byName[arg]; ok {
		return schema, nil
	}
	err := fmt.Errorf("unknown resource type %q", arg)
	return nil, display(ui.TypeNotFoundError(arg, ui.FindSimilar(arg, idx.names, nil), color.NoColor), err)
}
