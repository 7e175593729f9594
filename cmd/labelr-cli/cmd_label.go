package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/labelr/labelr/internal/labelschema"
	"github.com/labelr/labelr/internal/session"
	"github.com/labelr/labelr/internal/tui"
)

func newLabelCmd() *cobra.Command {
	var noEvents bool

	cmd := &cobra.Command{
		Use:   "label <dataset-id>",
		Short: "Label a dataset's unlabeled samples interactively",
		Long: `Open an interactive labeling session.

Keys: 1-9 and 0 toggle boolean labels, tab selects a numerical label and +/-
step it, a/d move back and forward, space saves and continues, r resets the
history and q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runLabel(ctx, args[0], !noEvents)
		},
	}
	cmd.Flags().BoolVar(&noEvents, "no-events", false, "Do not follow labels written by other sessions")
	return cmd
}

func runLabel(ctx context.Context, datasetID string, follow bool) error {
	ds, err := apiClient.Datasets.Get(ctx, datasetID)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	dataset := toDatasetDetail(*ds)

	schema, err := labelschema.New(dataset.Labels)
	if err != nil {
		return fmt.Errorf("dataset %s has an invalid label schema: %w", datasetID, err)
	}

	if schema.Len() == 0 {
		return fmt.Errorf("dataset %s has no labels to assign", datasetID)
	}

	src := newSampleSource(apiClient.Samples)
	ctrl := session.NewController(src, cliLog)
	model := tui.New(ctx, ctrl, dataset, schema)

	if follow {
		events, err := apiClient.Events.SubscribeLive(ctx, datasetID)
		if err != nil {
			cliLog.WithError(err).Warn("event stream unavailable; labels by other sessions will not be shown")
		} else {
			model = model.WithEvents(labeledElsewhere(events, src))
		}
	}

	return tui.Run(ctx, model)
}
