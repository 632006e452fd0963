package main

import (
	"fmt"
	"strings"

	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "EXECUTOR_AGENT"

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "executor-agent",
		Short:        "Self-healing bounded executor agent",
		SilenceUsage: true,
	}

	root.AddCommand(NewRunCommand())
	root.AddCommand(NewStatusCommand())
	return root
}

// syncFlags fills unset flags from EXECUTOR_AGENT_* variables and then from
// the config file, if any. Precedence: flag, env, file, default.
func syncFlags(configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobrautil.SyncViperPreRunE(envPrefix)(cmd, args); err != nil {
			return err
		}
		if *configFile == "" {
			return nil
		}

		v := viper.New()
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", *configFile, err)
		}

		var err error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if err != nil || f.Changed || !v.IsSet(f.Name) {
				return
			}
			if setErr := cmd.Flags().Set(f.Name, configValue(v.Get(f.Name))); setErr != nil {
				err = fmt.Errorf("invalid value for %s in config file: %w", f.Name, setErr)
			}
		})
		return err
	}
}

func configValue(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	default:
		return fmt.Sprint(t)
	}
}
