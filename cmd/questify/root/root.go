package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fastygo/questify/internal/client/api"
	"github.com/fastygo/questify/internal/client/session"
	"github.com/fastygo/questify/internal/infrastructure/localstore"
	"github.com/fastygo/questify/internal/ui"
	"github.com/fastygo/questify/pkg/logger"
)

const Version = "0.1.0"

// app is the state shared by every command once flags and config are read.
type app struct {
	client  *api.Client
	session *session.Manager
	store   *localstore.Store
	logger  *zap.Logger
	profile string
}

var (
	cfgFile string
	state   = &app{}
)

var rootCmd = &cobra.Command{
	Use:           "questify",
	Short:         "Questify: quests, XP and weekly missions from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return state.open()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return state.close()
	},
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.questify.yaml)")
	flags.String("server", "http://localhost:8080", "API server base URL")
	flags.String("profile", "default", "local session profile")
	flags.String("data-dir", defaultDataDir(), "directory for the local session store")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.Bool("verbose", false, "log debug output to stderr")
	_ = viper.BindPFlag("server", flags.Lookup("server"))
	_ = viper.BindPFlag("profile", flags.Lookup("profile"))
	_ = viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(
		newSignUpCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newTasksCmd(),
		newMissionsCmd(),
		newWatchCmd(),
		newProfilesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".questify")
	}
	viper.SetEnvPrefix("QUESTIFY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			fmt.Fprintln(os.Stderr, ui.Warn.Render(ui.IconWarn+" "+err.Error()))
		}
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".questify")
	}
	return ".questify"
}

func (a *app) open() error {
	level := "warn"
	if viper.GetBool("verbose") {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Encoding: "console", Output: os.Stderr})
	if err != nil {
		return err
	}
	a.logger = log

	store, err := localstore.Open(filepath.Join(viper.GetString("data_dir"), "session.db"))
	if err != nil {
		// Without local storage the session manager runs inert and every
		// authenticated command reports that nobody is logged in.
		a.logger.Warn("local session store unavailable", zap.Error(err))
		a.session = session.NewManager(nil, session.WithLogger(a.logger))
	} else {
		a.store = store
		a.profile = viper.GetString("profile")
		a.session = session.NewManager(store.Profile(a.profile), session.WithLogger(a.logger))
	}

	a.client = api.New(viper.GetString("server"), viper.GetDuration("timeout"))
	return nil
}

func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return a.store.Close()
}

func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
}

// token returns a usable bearer token, refreshing it when it is about to expire.
func (a *app) token(ctx context.Context) (string, error) {
	if !a.session.HasValidSession() {
		return "", errors.New("not logged in, run `questify login`")
	}
	token := a.session.Token()
	if !a.session.ShouldRefreshToken() {
		return token, nil
	}

	result, err := a.client.Refresh(ctx, token)
	if err != nil {
		return "", a.apiError(err)
	}
	a.session.SaveSession(result.User, result.Token, a.session.SessionInfo().RememberMe)
	a.logger.Debug("token refreshed")
	return result.Token, nil
}

// apiError clears the local session on 401 and turns it into a login hint.
func (a *app) apiError(err error) error {
	if !api.IsUnauthorized(err) {
		return err
	}
	a.session.ClearSession()
	if api.IsExpired(err) {
		return errors.New("session expired, please log in again")
	}
	return errors.New("please log in")
}
