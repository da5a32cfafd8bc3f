package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// envPrefix prefixes the environment variables that set flag defaults:
// --max-iter becomes CONVEX_MAX_ITER.
const envPrefix = "CONVEX"

// newRootCmd builds the command tree. Each call uses its own viper instance
// and klog flag set.
func newRootCmd() *cobra.Command {
	vip := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:          "convex",
		Short:        "Train and apply linear models with convex optimization",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(vip, configFile, cmd.Flags())
		},
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML, TOML or JSON file with flag defaults")

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	cmd.AddCommand(
		newTrainCmd(),
		newPredictCmd(),
		newAlgorithmsCmd(),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig fills every flag not given on the command line from the
// environment or the config file, in that order.
func loadConfig(vip *viper.Viper, path string, flags *pflag.FlagSet) error {
	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	if path != "" {
		vip.SetConfigFile(path)
		if err := vip.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || f.Name == "config" || !vip.IsSet(f.Name) {
			return
		}
		if setErr := flags.Set(f.Name, vip.GetString(f.Name)); setErr != nil {
			err = fmt.Errorf("invalid value for %s from config: %w", f.Name, setErr)
		}
	})
	return err
}
