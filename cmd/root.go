package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/logger"
	"github.com/talentlink/talentlink/internal/platform"
	"github.com/talentlink/talentlink/internal/secrets"
	"github.com/talentlink/talentlink/internal/session"
)

const app = "talentlink"

type Config struct {
	Services  platform.ServiceURLs `mapstructure:"services"`
	TokenFile string               `mapstructure:"token-file"`
	StateFile string               `mapstructure:"state-file"`
	UserAgent string               `mapstructure:"user-agent"`
	Identity  *IdentityConfig      `mapstructure:"identity"`
	Apply     *ApplyConfig         `mapstructure:"apply"`

	Notifications *NotificationsConfig `mapstructure:"notifications"`
}

type IdentityConfig struct {
	UserID      string `mapstructure:"user-id"`
	DisplayName string `mapstructure:"display-name"`
	Role        string `mapstructure:"role"`
}

type ApplyConfig struct {
	// CV selects the active CV by original filename; the newest upload is
	// used when unset.
	CV      string `mapstructure:"cv"`
	Exclude *struct {
		Companies []string
	} `mapstructure:"exclude"`
}

type NotificationsConfig struct {
	PollInterval time.Duration `mapstructure:"poll-interval"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentlink is a cli client for the TalentLink recruiting platform",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("token-file", "TALENTLINK_TOKEN_FILE"); err != nil {
		log.Fatalf("binding TALENTLINK_TOKEN_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentlink.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	return config, nil
}

// env bundles everything a command needs for one invocation.
type env struct {
	logger  *zap.Logger
	config  *Config
	client  *platform.Client
	session *session.Session
}

// setup builds the logger, config, platform client and session shared by all
// commands. A missing identity is not fatal here: every operation checks the
// session and reports a uniform "not authenticated" outcome before touching
// the network.
func setup(ctx context.Context) (*env, error) {
	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, err
	}

	config, err := getConfig()
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	token := ""
	tokenFile := config.TokenFile
	if tokenFile == "" {
		tokenFile = viper.GetString("token-file")
	}
	if tokenFile != "" {
		token, err = secrets.Load(secrets.Source{
			Name: "session token",
			File: tokenFile,
		})
		if err != nil {
			return nil, err
		}
	}

	client := platform.New(ctx, zl, token)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	applyServiceURLs(&client.URLs, config.Services)

	ident := session.Identity{}
	if config.Identity != nil {
		ident = session.Identity{
			UserID:      config.Identity.UserID,
			DisplayName: config.Identity.DisplayName,
			Role:        config.Identity.Role,
		}
	}

	return &env{
		logger:  zl,
		config:  config,
		client:  client,
		session: session.New(ident, zl),
	}, nil
}

// applyServiceURLs overrides the defaults with whatever the config sets.
func applyServiceURLs(urls *platform.ServiceURLs, overrides platform.ServiceURLs) {
	if overrides.Jobs != "" {
		urls.Jobs = overrides.Jobs
	}
	if overrides.Applications != "" {
		urls.Applications = overrides.Applications
	}
	if overrides.CVs != "" {
		urls.CVs = overrides.CVs
	}
	if overrides.Analysis != "" {
		urls.Analysis = overrides.Analysis
	}
	if overrides.Matching != "" {
		urls.Matching = overrides.Matching
	}
	if overrides.Notifications != "" {
		urls.Notifications = overrides.Notifications
	}
}

func (c *Config) stateFile() string {
	if c.StateFile != "" {
		return c.StateFile
	}
	return session.DefaultStateFile
}

func (c *Config) applyCV() string {
	if c.Apply == nil {
		return ""
	}
	return c.Apply.CV
}

func (c *Config) excludedCompanies() []string {
	if c.Apply == nil || c.Apply.Exclude == nil {
		return nil
	}
	return c.Apply.Exclude.Companies
}

func (c *Config) pollInterval() time.Duration {
	if c.Notifications == nil {
		return 0
	}
	return c.Notifications.PollInterval
}
