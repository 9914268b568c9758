package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elwood/romcat"
)

var (
	ingestOverwrite bool
	ingestEventsDir string
	ingestProgress  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <catalog.xml> <catalog.db>",
	Short: "Parse a catalog XML file and write a store",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("events-dir") {
			ingestEventsDir = getConfigString("events-dir", ingestEventsDir)
		}
		if !cmd.Flags().Changed("progress") && getConfigBool("no-progress") {
			ingestProgress = false
		}

		handle, err := romcat.Ingest(context.Background(), args[0], args[1], romcat.IngestOptions{
			Overwrite:    ingestOverwrite,
			EventLogDir:  ingestEventsDir,
			ShowProgress: ingestProgress,
		})
		if err != nil {
			return err
		}
		defer handle.Close()

		version, err := handle.CatalogVersion(context.Background())
		if err == nil && version != "" {
			fmt.Printf("ingested catalog build %s into %s\n", version, args[1])
		} else {
			fmt.Printf("ingested %s into %s\n", args[0], args[1])
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestOverwrite, "overwrite", false, "overwrite an existing output file")
	ingestCmd.Flags().StringVar(&ingestEventsDir, "events-dir", "", "write a JSONL event log to this directory (default: $ROMCAT_EVENTS_DIR or config file)")
	ingestCmd.Flags().BoolVar(&ingestProgress, "progress", true, "show a progress bar while writing the store")
	rootCmd.AddCommand(ingestCmd)
}
