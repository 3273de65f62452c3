package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"cfgstore/internal/config"
	"cfgstore/internal/config/codec"
	"cfgstore/internal/config/filestore"
	"cfgstore/internal/log"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys shared by the persistent flags and viper.
const (
	settingFile     = "file"
	settingFormat   = "format"
	settingDefaults = "defaults"
	settingJSON     = "json"
	settingLogLevel = "log-level"
	settingLogJSON  = "log-json"
)

// settingEnv maps each setting to the environment variable that backs it.
var settingEnv = map[string]string{
	settingFile:     config.EnvFile,
	settingFormat:   config.EnvFormat,
	settingDefaults: config.EnvDefaults,
	settingJSON:     config.EnvJSON,
	settingLogLevel: config.EnvLogLevel,
	settingLogJSON:  config.EnvLogJSON,
}

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Settings resolved from flags, then CFGSTORE_* variables.
	settings *viper.Viper
	Out      io.Writer
	Err      io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with the given App.
// Used for testing commands against a store in a temp dir.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app: app,
		Out: app.Out,
		Err: app.Err,
	}
}

// JSONOutput reports whether --json or CFGSTORE_JSON asked for JSON output.
func (p *AppProvider) JSONOutput() bool {
	if p.app != nil {
		return p.app.JSON
	}
	return p.settings != nil && p.settings.GetBool(settingJSON)
}

func (p *AppProvider) init() (*App, error) {
	v := p.settings
	if v == nil {
		v = viper.New()
	}

	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	level := v.GetString(settingLogLevel)
	if _, err := log.ParseLevel(level); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	logger := log.New(log.Config{
		Level:  level,
		Output: errOut,
		JSON:   v.GetBool(settingLogJSON),
	})

	path := v.GetString(settingFile)
	if path == "" {
		return nil, fmt.Errorf("no config file given (use --file or %s)", config.EnvFile)
	}
	format, err := config.ParseFormat(v.GetString(settingFormat))
	if err != nil {
		return nil, err
	}

	var defaults *config.Document
	if tmpl := v.GetString(settingDefaults); tmpl != "" {
		defaults, err = filestore.ReadDocument(tmpl, config.Detect, codec.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("loading defaults: %w", err)
		}
	}

	store, ok := filestore.New(path, format, defaults, filestore.WithLogger(logger))
	if !ok {
		logger.Debug().Str("file", path).Msg("config file did not load")
	}

	return &App{
		Store:    store,
		Defaults: defaults,
		Logger:   logger,
		Out:      out,
		Err:      errOut,
		JSON:     v.GetBool(settingJSON),
	}, nil
}

// bindSettings binds every setting to its persistent flag and environment
// variable.
func bindSettings(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, env := range settingEnv {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return fmt.Errorf("binding --%s: %w", key, err)
		}
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}
	return nil
}

// Execute runs the CLI.
func Execute() error {
	provider := &AppProvider{
		Out: os.Stdout,
		Err: os.Stderr,
	}

	rootCmd := newRootCmd(provider)
	return rootCmd.Execute()
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cfgstore",
		Short: "Read and edit configuration files in any supported format",
		Long: `cfgstore reads, edits and converts flat configuration files.

The format is detected from the file extension:
  .properties .cnf .conf .config   key=value properties
  .json .js                        JSON object
  .yml .yaml                       YAML mapping
  .sl .serialize                   serialized document
  .txt .list .enum                 one key per line

Missing keys are filled from the --defaults template and written back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(settingFile, "f", "", "Config file to operate on")
	flags.String(settingFormat, "detect", "Config format (properties, json, yaml, serialized, enum or detect)")
	flags.String(settingDefaults, "", "Template file whose keys are filled into the config")
	flags.Bool(settingJSON, false, "Output in JSON format")
	flags.String(settingLogLevel, "", "Log level for diagnostics on stderr (default warn)")
	flags.Bool(settingLogJSON, false, "Write diagnostics as JSON lines")

	if provider.settings == nil {
		provider.settings = viper.New()
	}
	if err := bindSettings(provider.settings, flags); err != nil {
		rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
			return err
		}
	}

	rootCmd.AddCommand(newGetCmd(provider))
	rootCmd.AddCommand(newSetCmd(provider))
	rootCmd.AddCommand(newAddCmd(provider))
	rootCmd.AddCommand(newUnsetCmd(provider))
	rootCmd.AddCommand(newListCmd(provider))
	rootCmd.AddCommand(newExistsCmd(provider))
	rootCmd.AddCommand(newCheckCmd(provider))
	rootCmd.AddCommand(newReloadCmd(provider))
	rootCmd.AddCommand(newConvertCmd(provider))
	rootCmd.AddCommand(newVersionCmd(provider))

	return rootCmd
}
