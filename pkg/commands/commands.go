package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tableflip.dev/notes/pkg/app"
	"tableflip.dev/notes/pkg/store"
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:          "notes",
		Short:        base.Wrap80("Browse, search and edit notes on a notes server from the command line."),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive() {
				return cmd.Help()
			}
			return runUI(cmd)
		},
	}

	addGlobalFlags(cmd.PersistentFlags())
	cobra.CheckErr(bindFlags(cmd.PersistentFlags()))

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addLogin(topLevel)
	addRegister(topLevel)
	addLogout(topLevel)
	addWhoAmI(topLevel)
	addList(topLevel)
	addShow(topLevel)
	addTags(topLevel)
	addAdd(topLevel)
	addEdit(topLevel)
	addDelete(topLevel)
	addCompletions(topLevel)
	addVersion(topLevel)
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String(store.KeyBaseURL, "http://localhost:8080", "Root of the notes API.")
	fs.String(store.KeyPath, "~/.notes", "Directory holding the persisted session.")
	fs.Int(store.KeyPageSize, 9, "Notes per page.")
	fs.Int(store.KeyDebounce, 300, "Delay in milliseconds before a search or tag edit is fetched.")
	fs.Int(store.KeySeedPages, 3, "Pages scanned at startup to discover tag names, 0 disables.")
	fs.Duration(store.KeyTimeout, 30*time.Second, "HTTP request timeout.")
	fs.String(store.KeyLogLevel, "warn", "Log level: debug, info, warn or error.")
}

// bindFlags lets flags take precedence over the environment and config file
// when they are set.
func bindFlags(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		if bindErr := viper.BindPFlag(f.Name, f); bindErr != nil {
			err = fmt.Errorf("bind flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

func interactive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// withService loads the configuration, opens the service and hands it to
// fn. The service is closed when fn returns.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Service) error) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	log, err := app.NewLogger(cfg.LogLevel())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := app.Open(ctx, cfg, &log)
	if err != nil {
		return err
	}
	defer svc.Close()
	return fn(ctx, svc)
}
