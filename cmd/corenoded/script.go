package main

import (
	"fmt"
	"time"

	"github.com/cuemby/corenode/pkg/events"
	"github.com/cuemby/corenode/pkg/scripts"
	"github.com/spf13/cobra"
)

// scriptCmd's subcommand runs a short-lived scheduler of its own: script
// state lives only in pkg/scripts.Storage's memory and is never persisted,
// so there is no running daemon for a separate "add" invocation to talk to.
// "run" stands the scheduler up, adds one script, watches it fire, and tears
// the scheduler back down.
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Exercise the script scheduler without a connection pool",
}

var scriptRunCmd = &cobra.Command{
	Use:   "run <src>",
	Short: "Add a script to an ephemeral scheduler and watch it fire",
	Args:  cobra.ExactArgs(1),
	RunE:  runScriptRun,
}

var (
	scriptRunInterval    time.Duration
	scriptRunDuration    time.Duration
	scriptRunRemoveAfter time.Duration
)

func init() {
	scriptRunCmd.Flags().DurationVar(&scriptRunInterval, "interval", 0, "firing interval; 0 means the script fires once and is removed")
	scriptRunCmd.Flags().DurationVar(&scriptRunDuration, "run-for", 5*time.Second, "how long to let the scheduler run before shutting down")
	scriptRunCmd.Flags().DurationVar(&scriptRunRemoveAfter, "remove-after", 0, "if set, call RemoveScript after this long to demonstrate early removal")

	scriptCmd.AddCommand(scriptRunCmd)
}

func runScriptRun(cmd *cobra.Command, args []string) error {
	src := args[0]

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()
	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	config := scripts.Config{
		PeerID:          cfg.PeerID,
		TimerResolution: cfg.TimerResolution,
		ParticleTTL:     cfg.ParticleTTL,
		MaxFailures:     cfg.MaxFailures,
	}
	api, storage := scripts.New(loggingPool{}, newNoopFailureSource(), config, broker)
	storage.Start()
	defer storage.Stop()

	var interval *time.Duration
	if scriptRunInterval > 0 {
		interval = &scriptRunInterval
	}
	uuid, err := api.AddScript(src, interval)
	if err != nil {
		return err
	}
	fmt.Printf("scheduled script %s\n", uuid)

	var removeTimer <-chan time.Time
	if scriptRunRemoveAfter > 0 {
		removeTimer = time.After(scriptRunRemoveAfter)
	}
	deadline := time.After(scriptRunDuration)

	for {
		select {
		case ev := <-sub:
			fmt.Printf("[%s] %s: %s\n", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.Message)
		case <-removeTimer:
			removeTimer = nil
			existed, err := api.RemoveScript(uuid)
			if err != nil {
				fmt.Println("remove failed:", err)
				continue
			}
			fmt.Println("removed, existed:", <-existed)
		case <-deadline:
			return nil
		}
	}
}
