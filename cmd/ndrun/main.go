package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	ndruntime "github.com/gridpointai/nd-runtime"
	"github.com/gridpointai/nd-runtime/engine"
)

type config struct {
	Mode    string  `yaml:"mode"`
	Cval    float64 `yaml:"cval"`
	Verbose bool    `yaml:"verbose"`
}

var (
	cfg      config
	cfgFile  string
	modeFlag string
	mode     ndruntime.ExtendMode
	logger   *zap.Logger
)

func loadConfig() error {
	path := cfgFile
	if path == "" {
		path = "ndrun.yaml"
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "ndrun",
	Short: "Run n-dimensional image operations over CSV grids",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		if modeFlag != "" {
			cfg.Mode = modeFlag
		}
		if cfg.Mode == "" {
			cfg.Mode = "reflect"
		}
		var err error
		mode, err = ndruntime.ParseExtendMode(cfg.Mode)
		if err != nil {
			return err
		}

		if cfg.Verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		engine.SetLogger(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		interactive, _ := cmd.Flags().GetBool("interactive")
		if interactive {
			file, _ := cmd.Flags().GetString("in")
			return runInteractive(file)
		}
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ndrun.yaml)")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "boundary extend mode (nearest, wrap, reflect, mirror, constant)")
	rootCmd.PersistentFlags().Float64Var(&cfg.Cval, "cval", 0, "fill value for the constant extend mode")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "development logging")

	rootCmd.Flags().BoolP("interactive", "i", false, "interactive mode with TUI")
	rootCmd.Flags().String("in", "", "input CSV grid for interactive mode")

	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(zoomCmd)
	rootCmd.AddCommand(objectsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
