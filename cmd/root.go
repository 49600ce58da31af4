package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/marcus/phonebook/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var version string

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "phonebook",
	Short: "Phonebook client for a REST persons resource",
	Long: `phonebook - keeps a local list of names and numbers in step with a remote REST resource.

Adds, number changes and deletes go to the server first; the local list only changes once the server agrees.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd, os.Stderr)
	},
}

// Execute runs the root command
func Execute() {
	config.LoadDotenvIfPresent()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// nameWithAliases returns "name, alias1, alias2" if aliases exist, else just "name"
func nameWithAliases(cmd *cobra.Command) string {
	if len(cmd.Aliases) > 0 {
		return cmd.Name() + ", " + strings.Join(cmd.Aliases, ", ")
	}
	return cmd.Name()
}

func init() {
	cobra.AddTemplateFunc("nameWithAliases", nameWithAliases)
	cobra.AddTemplateFunc("add", func(a, b int) int { return a + b })

	usageTemplate := `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad (nameWithAliases .) (add .NamePadding 8)}} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
	rootCmd.SetUsageTemplate(usageTemplate)

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Phonebook Commands:"},
		&cobra.Group{ID: "views", Title: "View Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")

	addGlobalFlags(rootCmd.PersistentFlags())
}

// addGlobalFlags registers the connection, prompt and logging flags shared
// by every subcommand.
func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("server", "", "base URL of the phonebook server (env PHONEBOOK_URL)")
	fs.String("resource", "", "collection path on the server (env PHONEBOOK_RESOURCE)")
	fs.String("api-key", "", "bearer token sent with every request (env PHONEBOOK_API_KEY)")
	fs.Duration("timeout", 0, "per-request timeout (env PHONEBOOK_TIMEOUT)")
	fs.BoolP("yes", "y", false, "answer yes to confirmation prompts")
	fs.String("log-level", "warn", "log level: debug, info, warn, error")
	fs.String("log-format", "text", "log format: text or json")
}

// settings resolves env > config file > defaults, then applies any flags the
// user set explicitly.
func settings(cmd *cobra.Command) config.Settings {
	s := config.Resolve()
	fs := cmd.Flags()
	if fs.Changed("server") {
		s.ServerURL, _ = fs.GetString("server")
	}
	if fs.Changed("resource") {
		s.Resource, _ = fs.GetString("resource")
	}
	if fs.Changed("api-key") {
		s.APIKey, _ = fs.GetString("api-key")
	}
	if fs.Changed("timeout") {
		if d, _ := fs.GetDuration("timeout"); d > 0 {
			s.Timeout = d
		}
	}
	return s
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level %q", s)
}

// setupLogging installs the default slog handler from the logging flags.
func setupLogging(cmd *cobra.Command, w io.Writer) error {
	levelStr, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	level, err := parseLevel(levelStr)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format %q (use text or json)", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
