package main

import (
	"encoding/json"
	"fmt"
	"io"

	countries "github.com/goliatone/go-countries"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the repository shared by subcommands. It is built lazily in
// PersistentPreRunE once flags and configuration are known.
type app struct {
	configFile string
	logLevel   string
	v          *viper.Viper
	repo       *countries.Repository
}

func newRootCmd() *cobra.Command {
	a := &app{v: countries.NewConfigViper()}

	rootCmd := &cobra.Command{
		Use:           "countries",
		Short:         "Query country reference data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "configuration file (yaml, toml or json)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.String("data-dir", "", "dataset root directory")
	flags.String("engine", "", "expression engine: expr, cel or js")
	flags.Bool("hydrate", false, "hydrate results into typed country values")

	for key, name := range map[string]string{
		"data_dir":       "data-dir",
		"engine":         "engine",
		"hydrate.before": "hydrate",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	rootCmd.AddCommand(
		newAllCmd(a),
		newShowCmd(a),
		newTraceCmd(a),
		newCurrenciesCmd(a),
		newFlagCmd(a),
		newTimezonesCmd(a),
		newBoundsCmd(a),
		newWhereCmd(a),
		newSearchCmd(a),
		newCallCmd(a),
		newSchemaCmd(a),
	)
	return rootCmd
}

func (a *app) open(cmd *cobra.Command) error {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %q: %w", a.configFile, err)
		}
	}
	cfg, err := countries.ConfigFromViper(a.v)
	if err != nil {
		return err
	}
	repo, err := countries.New(
		countries.WithConfig(cfg),
		countries.WithLogger(newLogger(a.logLevel, cmd.ErrOrStderr())),
	)
	if err != nil {
		return err
	}
	a.repo = repo
	return nil
}

// call runs name through the repository so results share the result cache
// and honour the hydrate setting.
func (a *app) call(name string, args ...any) (any, error) {
	return a.repo.Call(name, args...)
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(printable(value))
}

// printable converts collections and ordered maps into values encoding/json
// renders in dataset order.
func printable(value any) any {
	switch v := value.(type) {
	case interface {
		Keys() []string
		ToMap() map[string]any
	}:
		return orderedEntries(v.Keys(), v.ToMap())
	default:
		return value
	}
}

func orderedEntries(keys []string, values map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(keys))
	for _, key := range keys {
		out = append(out, map[string]any{"code": key, "value": values[key]})
	}
	return out
}
