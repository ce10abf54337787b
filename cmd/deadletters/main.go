/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command deadletters inspects and requeues dead-lettered work items on a
// fastpath offload queue. It currently speaks to the in-memory broker over
// a JSON snapshot file written by the owning process; a broker with remote
// inspection can be wired in behind the same flags.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/suparena/fastpath"
	"github.com/suparena/fastpath/offload"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	queueName   = flag.String("queue", "offload", "Queue name")
	snapshot    = flag.String("snapshot", "", "Path to a queue snapshot file")
	requeueID   = flag.String("requeue", "", "Dead-lettered work item id to requeue")
	jsonOut     = flag.Bool("json", false, "Emit JSON instead of a table")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := fastpath.GetVersionInfo()
		fmt.Printf("FastPath deadletters version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	broker, err := loadBroker(*queueName, *snapshot)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load queue snapshot")
		os.Exit(1)
	}
	queue := offload.NewQueue(*queueName, broker)

	ctx := context.Background()

	if *requeueID != "" {
		if err := queue.Requeue(ctx, *requeueID); err != nil {
			logger.Error().Err(err).Str("id", *requeueID).Msg("requeue failed")
			os.Exit(1)
		}
		fmt.Printf("requeued %s\n", *requeueID)
		return
	}

	items, err := queue.DeadLetters(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list dead letters")
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			logger.Error().Err(err).Msg("failed to encode dead letters")
			os.Exit(1)
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tATTEMPTS\tENQUEUED\tLAST ERROR")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			item.ID, item.Attempts, item.EnqueuedAt.Format("2006-01-02T15:04:05Z07:00"), item.LastError)
	}
	w.Flush()
	fmt.Fprintf(os.Stdout, "%d dead-lettered item(s) on %q\n", len(items), *queueName)
}

// loadBroker rebuilds an in-memory broker from a snapshot file. Without a
// snapshot an empty broker is returned, which makes listing a no-op but
// keeps the command usable in tests and dry runs.
func loadBroker(queue, path string) (offload.Broker, error) {
	broker := offload.NewMemoryBroker(queue)
	if path == "" {
		return broker, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %q: %w", path, err)
	}
	var items []offload.WorkItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse snapshot %q: %w", path, err)
	}
	if err := broker.Restore(items); err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return broker, nil
}
