package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/phonebook/internal/config"
	"github.com/marcus/phonebook/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage phonebook configuration",
	GroupID: "system",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigSet(args[0], args[1])
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigGet(args[0])
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all config values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigList()
	},
}

func runConfigSet(key, val string) error {
	cfg, err := config.Load()
	if err != nil {
		output.Error("load config: %v", err)
		return err
	}
	if err := cfg.Set(key, val); err != nil {
		output.Error("%v", err)
		output.Info("Valid keys: %s", strings.Join(config.Keys(), ", "))
		return err
	}
	if err := config.Save(cfg); err != nil {
		output.Error("save config: %v", err)
		return err
	}
	if key == "api_key" {
		val = maskSecret(val)
	}
	output.Success("set %s = %s", key, val)
	return nil
}

func runConfigGet(key string) error {
	cfg, err := config.Load()
	if err != nil {
		output.Error("load config: %v", err)
		return err
	}
	val, err := cfg.Get(key)
	if err != nil {
		output.Error("%v", err)
		output.Info("Valid keys: %s", strings.Join(config.Keys(), ", "))
		return err
	}
	output.Info("%s", displayValue(key, val))
	return nil
}

func runConfigList() error {
	cfg, err := config.Load()
	if err != nil {
		output.Error("load config: %v", err)
		return err
	}
	for _, key := range config.Keys() {
		val, _ := cfg.Get(key)
		output.Info("%s = %s", key, displayValue(key, val))
	}
	return nil
}

// displayValue shows unset keys with their default and hides secrets.
func displayValue(key, val string) string {
	if val == "" {
		return defaultFor(key)
	}
	if key == "api_key" {
		return maskSecret(val)
	}
	return val
}

func defaultFor(key string) string {
	switch key {
	case "server_url":
		return config.DefaultServerURL + " (default)"
	case "resource":
		return config.DefaultResource + " (default)"
	case "timeout":
		return config.DefaultTimeout.String() + " (default)"
	case "status_delay":
		return config.DefaultStatusDelay.String() + " (default)"
	}
	return "(unset)"
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return fmt.Sprintf("%s****", s[:4])
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}
