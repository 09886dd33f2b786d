package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/3leaps/logcove/internal/config"
	"github.com/3leaps/logcove/pkg/catalog"
	"github.com/3leaps/logcove/pkg/registry"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Manage streams directly against object storage",
	Long: `Stream management operates directly against the configured object
store, independent of a running serve process: list lists every stream's
top-level prefix, show reports one stream's declared config and schema,
and rm removes a stream's snapshot (manifests, data files and the declared
config stay in the store).`,
}

var streamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every stream known to the object store",
	RunE:  runStreamList,
}

var streamShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a stream's declared config and schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runStreamShow,
}

var streamRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a stream's snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runStreamRm,
}

func init() {
	rootCmd.AddCommand(streamCmd)
	streamCmd.AddCommand(streamListCmd, streamShowCmd, streamRmCmd)
}

func runStreamList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	p, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	names, err := registry.ListStreamNames(ctx, p)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runStreamShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	p, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	exists, err := registry.ExistsInStorage(ctx, p, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("stream %s not found", name)
	}

	reg := registry.New()
	store := catalog.NewStore(p)
	if err := registry.UpsertFromStorage(ctx, reg, store, p, name); err != nil {
		return err
	}

	meta, _ := reg.Get(name)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("time_partition_column: %s\n", meta.TimePartitionColumn)
	fmt.Printf("static_schema: %v\n", meta.StaticSchema)
	fmt.Println("schema:")
	for _, f := range meta.Schema.Fields {
		fmt.Printf("  %s: %s\n", f.Name, f.Type)
	}
	return nil
}

func runStreamRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	p, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	exists, err := registry.ExistsInStorage(ctx, p, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("stream %s not found", name)
	}

	store := catalog.NewStore(p)
	if err := store.DeleteStream(ctx, name); err != nil {
		return err
	}
	fmt.Printf("deleted stream %s\n", name)
	return nil
}
