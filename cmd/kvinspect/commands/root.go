package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"sealkv/internal/app"
	"sealkv/internal/config"
	"sealkv/internal/fsutil"
	"sealkv/internal/inspect"
	"sealkv/internal/log"
)

var (
	home        string
	configPath  string
	user        string
	passphrase  string
	keyringMode string
	logLevel    string
	global      bool
	appCtx      *app.Wire
)

func Execute() error {
	return run(newRootCmd())
}

// run executes root and closes whatever stores the subcommand opened, also
// when it failed.
func run(root *cobra.Command) error {
	defer func() {
		if appCtx != nil {
			_ = appCtx.Close()
			appCtx = nil
		}
	}()
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kvinspect",
		Short:        "Inspect encrypted key-value stores",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("home") {
				cfg.Storage.Home = home
			}
			if flags.Changed("user") {
				cfg.Session.User = user
			}
			if flags.Changed("passphrase") {
				cfg.Keyring.Passphrase = passphrase
			}
			if flags.Changed("keyring") {
				cfg.Keyring.Mode = keyringMode
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if err := fsutil.MkdirAll(cfg.Storage.Home); err != nil {
				return err
			}

			appCtx, err = app.NewWire(cfg, log.New(cfg))
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&home, "home", "", "store root (default ~/.sealkv)")
	pf.StringVar(&configPath, "config", "", "YAML config file (default $SEALKV_CONFIG)")
	pf.StringVar(&user, "user", "", "signed-in user for user-scoped stores")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "master key passphrase (passphrase keyring)")
	pf.StringVar(&keyringMode, "keyring", "", "master key source: file or passphrase")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVarP(&global, "global", "g", false, "treat <store> as a global store")

	root.AddCommand(
		storesCmd(), getCmd(), setCmd(), rmCmd(), keysCmd(),
		dumpCmd(), dropCmd(), logoutCmd(), statsCmd(),
	)
	return root
}

// label turns a <store> argument into an inspector label, honouring --global.
func label(arg string) string {
	if global && !strings.HasSuffix(arg, inspect.GlobalSuffix) {
		return arg + inspect.GlobalSuffix
	}
	return arg
}
