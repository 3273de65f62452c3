package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cfgstore/internal/config"
	"cfgstore/internal/config/codec"
	"cfgstore/internal/config/filestore"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// errNotWellFormed is returned by commands that need a usable store.
	errNotWellFormed = errors.New("config file is not well-formed")
	// errEncode is returned when a usable store cannot encode its document.
	errEncode = errors.New("config document cannot be encoded in the file's format")
)

// loadedStore returns the app and its store, failing when the store could
// not resolve a format.
func loadedStore(provider *AppProvider) (*App, *filestore.Store, error) {
	app, err := provider.Get()
	if err != nil {
		return nil, nil, err
	}
	if !app.Store.Check() {
		return nil, nil, fmt.Errorf("%s: %w", app.Store.Path(), errNotWellFormed)
	}
	return app, app.Store, nil
}

// save writes the store back. A refused save reports errNotWellFormed when
// the store lost its format and errEncode otherwise.
func save(store *filestore.Store) error {
	if store.Save() {
		return nil
	}
	if !store.Check() {
		return fmt.Errorf("saving %s: %w", store.Path(), errNotWellFormed)
	}
	return fmt.Errorf("saving %s as %s: %w", store.Path(), store.Format(), errEncode)
}

// newGetCmd creates the "get" command.
func newGetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get the value of a top-level configuration key.

Prints the bare value if the key is set, or "key (not set)" if missing.
Nested mappings and lists are printed as JSON.

Examples:
  cfgstore -f server.properties get motd
  cfgstore -f plugin.yml get database`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			value, ok := app.Store.Get(key)

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"key":   key,
					"value": value,
					"set":   ok,
				})
			}

			if !ok {
				fmt.Fprintln(app.Out, app.WarnColor(key+" (not set)"))
				return nil
			}
			fmt.Fprintln(app.Out, formatValue(value))
			return nil
		},
	}

	return cmd
}

// newSetCmd creates the "set" command.
func newSetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a top-level configuration key and save the file.

The value is read as a YAML scalar or flow collection, so "true" becomes a
boolean, "8080" a number and "[a, b]" a list. Anything that does not parse
is stored as a plain string.

Examples:
  cfgstore -f server.properties set pvp false
  cfgstore -f plugin.yml set database '{host: localhost, port: 3306}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, store, err := loadedStore(provider)
			if err != nil {
				return err
			}

			key := args[0]
			value := parseValue(args[1])
			store.Set(key, value)
			if err := save(store); err != nil {
				return err
			}

			stored, _ := store.Get(key)
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"key":   key,
					"value": stored,
				})
			}

			fmt.Fprintf(app.Out, "%s %s = %s\n", app.SuccessColor("Set"), key, formatValue(stored))
			return nil
		},
	}

	return cmd
}

// newAddCmd creates the "add" command.
func newAddCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <key>...",
		Short: "Mark keys as present",
		Long: `Set each key to true and save the file.

This is the natural way to edit one-key-per-line lists such as
ops.txt or banned-players.txt.

Examples:
  cfgstore -f ops.txt add alice bob`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, store, err := loadedStore(provider)
			if err != nil {
				return err
			}

			for _, key := range args {
				store.Add(key)
			}
			if err := save(store); err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"added": args,
				})
			}

			fmt.Fprintf(app.Out, "%s %s\n", app.SuccessColor("Added"), strings.Join(args, ", "))
			return nil
		},
	}

	return cmd
}

// newUnsetCmd creates the "unset" command.
func newUnsetCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset <key>...",
		Short: "Remove configuration keys",
		Long: `Remove keys and save the file.

Keys are removed regardless of whether they were set.

Examples:
  cfgstore -f ops.txt unset alice
  cfgstore -f settings.json unset cache.size`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, store, err := loadedStore(provider)
			if err != nil {
				return err
			}

			for _, key := range args {
				store.Remove(key)
			}
			if err := save(store); err != nil {
				return err
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"unset": args,
				})
			}

			fmt.Fprintf(app.Out, "Unset %s\n", strings.Join(args, ", "))
			return nil
		},
	}

	return cmd
}

// newListCmd creates the "list" command.
func newListCmd(provider *AppProvider) *cobra.Command {
	var keysOnly, sorted bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all top-level configuration entries.

Entries are printed in file order unless --sort is given.

Examples:
  cfgstore -f server.properties list
  cfgstore -f ops.txt list --keys
  cfgstore -f plugin.yml list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			all := app.Store.All()
			keys := all.Keys()
			if sorted {
				keys = sortedKeys(all.ToMap())
			}

			if app.JSON {
				if keysOnly {
					if keys == nil {
						keys = []string{}
					}
					return json.NewEncoder(app.Out).Encode(keys)
				}
				return json.NewEncoder(app.Out).Encode(all)
			}

			if len(keys) == 0 {
				fmt.Fprintln(app.Out, "No configuration set")
				return nil
			}

			if keysOnly {
				for _, k := range keys {
					fmt.Fprintln(app.Out, k)
				}
				return nil
			}

			fmt.Fprintln(app.Out, "Configuration:")
			for _, k := range keys {
				v, _ := all.Get(k)
				fmt.Fprintf(app.Out, "  %s = %s\n", k, formatValue(v))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&keysOnly, "keys", false, "Print keys only")
	cmd.Flags().BoolVar(&sorted, "sort", false, "Sort entries by key")

	return cmd
}

// newExistsCmd creates the "exists" command.
func newExistsCmd(provider *AppProvider) *cobra.Command {
	var ignoreCase bool

	cmd := &cobra.Command{
		Use:   "exists <key>",
		Short: "Report whether a key is set",
		Long: `Print true if the key holds a value, false otherwise.

Examples:
  cfgstore -f ops.txt exists alice
  cfgstore -f ops.txt exists -i Alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			var found bool
			if ignoreCase {
				found = app.Store.ExistsFold(key)
			} else {
				found = app.Store.Exists(key)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"key":    key,
					"exists": found,
				})
			}

			fmt.Fprintln(app.Out, found)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "Compare keys case-insensitively")

	return cmd
}

// newCheckCmd creates the "check" command.
func newCheckCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the config file is usable",
		Long: `Check that the config file's format could be resolved.

Exits non-zero when the extension is unknown or the requested format
is not supported. Content that cannot be decoded is not an error; it
is replaced by the defaults template.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			store := app.Store
			ok := store.Check()

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"file":        store.Path(),
					"format":      store.Format().String(),
					"well_formed": ok,
				})
			}

			if !ok {
				return fmt.Errorf("%s: %w", store.Path(), errNotWellFormed)
			}
			fmt.Fprintf(app.Out, "%s %s (%s, %d keys)\n",
				app.SuccessColor("OK"), store.Path(), store.Format(), len(store.Keys()))
			return nil
		},
	}

	return cmd
}

// newReloadCmd creates the "reload" command.
func newReloadCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Reload the config file, detecting its format from the extension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			store := app.Store
			if !store.Reload() {
				return fmt.Errorf("%s: %w", store.Path(), errNotWellFormed)
			}

			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"file":   store.Path(),
					"format": store.Format().String(),
					"keys":   len(store.Keys()),
				})
			}

			fmt.Fprintf(app.Out, "Reloaded %s (%s, %d keys)\n", store.Path(), store.Format(), len(store.Keys()))
			return nil
		},
	}

	return cmd
}

// newConvertCmd creates the "convert" command.
func newConvertCmd(provider *AppProvider) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <dest>",
		Short: "Write the config to another file and format",
		Long: `Encode the loaded config into dest.

The destination format is detected from dest's extension unless --to is
given. The source file is not modified. Converting to the enum format
keeps only the keys.

Examples:
  cfgstore -f server.properties convert server.yml
  cfgstore -f ops.txt convert ops.out --to json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, store, err := loadedStore(provider)
			if err != nil {
				return err
			}

			format, err := config.ParseFormat(to)
			if err != nil {
				return err
			}

			dest := args[0]
			if err := filestore.WriteDocument(dest, format, store.All(), codec.WithLogger(app.Logger)); err != nil {
				return fmt.Errorf("converting to %s: %w", dest, err)
			}

			if format == config.Detect {
				format, _ = config.DetectFormat(dest)
			}
			if app.JSON {
				return json.NewEncoder(app.Out).Encode(map[string]any{
					"source": store.Path(),
					"dest":   dest,
					"format": format.String(),
				})
			}

			fmt.Fprintf(app.Out, "%s %s (%s) to %s (%s)\n",
				app.SuccessColor("Converted"), store.Path(), store.Format(), dest, format)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "detect", "Destination format")

	return cmd
}

// parseValue reads a command-line value as YAML so scalars get their natural
// types. Unparseable or empty input is kept as the raw string.
func parseValue(raw string) any {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	return v
}

// formatValue renders a stored value for text output. Containers are printed
// as compact JSON.
func formatValue(v any) string {
	switch v.(type) {
	case *config.Document, []any, []string:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
	return fmt.Sprint(v)
}

// sortedKeys returns the sorted keys of a map.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
