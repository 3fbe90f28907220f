package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soarlink/trustar-connector/internal/actions"
	"github.com/soarlink/trustar-connector/internal/host"
	"github.com/soarlink/trustar-connector/internal/store"
	"github.com/soarlink/trustar-connector/internal/trustar"
	"github.com/soarlink/trustar-connector/internal/validate"
)

var (
	cfgFile      string
	stationURL   string
	clientID     string
	clientSecret string
	verifyTLS    bool
	dbPath       string
	statePath    string
	redisURL     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trustar-connector",
	Short: "TruSTAR threat-intelligence connector",
	Long: `trustar-connector queries and populates the TruSTAR Station: hunt
reports by indicator, fetch and submit reports, and ingest the latest
indicators as containers of CEF artifacts.

Each subcommand runs one connector action against the configured asset and
prints the structured action result as JSON.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.trustar-connector.yaml)")
	rootCmd.PersistentFlags().StringVar(&stationURL, "url", "", "TruSTAR Station base URL")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "API client id")
	rootCmd.PersistentFlags().StringVar(&clientSecret, "client-secret", "", "API client secret")
	rootCmd.PersistentFlags().BoolVar(&verifyTLS, "verify-tls", false, "Verify TLS certificates")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/trustar-connector.db", "SQLite database path for ingested containers/artifacts")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "./data/trustar-connector.state.json", "Connector state file path")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis URL for connector state (overrides the state file)")

	// Bind flags to viper
	viper.BindPFlag("trustar.url", rootCmd.PersistentFlags().Lookup("url"))
	viper.BindPFlag("trustar.client_id", rootCmd.PersistentFlags().Lookup("client-id"))
	viper.BindPFlag("trustar.client_secret", rootCmd.PersistentFlags().Lookup("client-secret"))
	viper.BindPFlag("trustar.verify_tls", rootCmd.PersistentFlags().Lookup("verify-tls"))
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("state.path", rootCmd.PersistentFlags().Lookup("state"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".trustar-connector" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".trustar-connector")
	}

	viper.SetEnvPrefix("TRUSTAR")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	viper.SetDefault("database.path", "./data/trustar-connector.db")
	viper.SetDefault("state.path", "./data/trustar-connector.state.json")
}

// assetCredentials builds the configured asset credentials.
func assetCredentials() (trustar.Credentials, error) {
	creds := trustar.Credentials{
		BaseURL:      viper.GetString("trustar.url"),
		ClientID:     viper.GetString("trustar.client_id"),
		ClientSecret: viper.GetString("trustar.client_secret"),
	}
	if creds.BaseURL == "" {
		return creds, fmt.Errorf("station URL is required. Use --url or set TRUSTAR_TRUSTAR_URL")
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return creds, fmt.Errorf("client id and client secret are required")
	}
	return creds, nil
}

// newSession assembles one action session from the configuration: API client,
// action result, state store and the SQLite artifact writer. The returned
// cleanup releases the stores.
func newSession(param map[string]interface{}) (*actions.Session, func(), error) {
	creds, err := assetCredentials()
	if err != nil {
		return nil, nil, err
	}

	result := host.NewActionResult(param)
	logger := host.NewLogger(
		log.New(os.Stderr, "[trustar] ", log.LstdFlags),
		log.New(os.Stderr, "[trustar debug] ", log.LstdFlags),
	)

	client, err := trustar.NewClient(trustar.ClientOptions{
		Credentials: creds,
		VerifyTLS:   viper.GetBool("trustar.verify_tls"),
		Debug:       result,
	})
	if err != nil {
		return nil, nil, err
	}

	var states host.StateStore
	var closers []func()
	if url := viper.GetString("redis.url"); url != "" {
		redisStore, err := host.NewRedisStateStore(url, "")
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { redisStore.Close() })
		states = redisStore
	} else {
		states = host.NewFileStateStore(viper.GetString("state.path"))
	}

	st, err := store.NewStore(viper.GetString("database.path"))
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, nil, err
	}
	closers = append(closers, func() { st.Close() })

	sess := &actions.Session{
		Client:     client,
		Result:     result,
		States:     states,
		Artifacts:  st,
		Logger:     logger,
		ValidateIP: validate.IsIP,
	}
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return sess, cleanup, nil
}

// runAction dispatches one action and prints its result as JSON. A failed
// action sets a non-nil error after the result has been printed.
func runAction(cmd *cobra.Command, sess *actions.Session, req actions.Request) error {
	err := actions.Dispatch(cmd.Context(), sess, req)

	out, merr := json.MarshalIndent(sess.Result, "", "  ")
	if merr == nil {
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	}

	if err != nil {
		return fmt.Errorf("action %s failed: %w", req.Action, err)
	}
	return nil
}
