package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soarlink/trustar-connector/internal/actions"
)

var (
	pollDaemon   bool
	pollInterval time.Duration
)

// pollCmd ingests the latest indicators. A single invocation is an ad-hoc
// "poll now"; --daemon runs scheduled polls on an interval, where the first
// cycle fetches everything and later cycles pass the window size.
var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Ingest the latest TruSTAR indicators as containers of artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !pollDaemon {
			sess, cleanup, err := newSession(nil)
			if err != nil {
				return err
			}
			defer cleanup()
			return runAction(cmd, sess, actions.Request{
				Action: actions.ActionOnPoll,
				Poll:   &actions.PollParams{PollNow: true},
			})
		}

		// Reload credentials when the config file changes between cycles.
		viper.OnConfigChange(func(e fsnotify.Event) {
			fmt.Fprintln(os.Stderr, "Config file changed:", e.Name)
		})
		viper.WatchConfig()

		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		lastRun := time.Now()
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case now := <-ticker.C:
				sess, cleanup, err := newSession(nil)
				if err != nil {
					fmt.Fprintln(os.Stderr, "poll cycle skipped:", err)
					continue
				}
				err = runAction(cmd, sess, actions.Request{
					Action: actions.ActionOnPoll,
					Poll: &actions.PollParams{
						StartTime: lastRun.UnixMilli(),
						EndTime:   now.UnixMilli(),
					},
				})
				cleanup()
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
				lastRun = now
			}
		}
	},
}

func init() {
	pollCmd.Flags().BoolVar(&pollDaemon, "daemon", false, "Run scheduled polls until interrupted")
	pollCmd.Flags().DurationVar(&pollInterval, "interval", time.Hour, "Scheduled poll interval")
	rootCmd.AddCommand(pollCmd)
}
