package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elwood/romcat/internal/store"
)

type checkResult struct {
	name    string
	message string
	err     error
}

var doctorCmd = &cobra.Command{
	Use:   "doctor <catalog.db>",
	Short: "Check a store file for accessibility and integrity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		var results []checkResult

		if _, err := os.Stat(path); err != nil {
			results = append(results, checkResult{name: "file exists", err: err})
		} else {
			results = append(results, checkResult{name: "file exists", message: path})
		}

		if version := store.SQLiteVersion(); version != "" {
			results = append(results, checkResult{name: "sqlite version", message: version})
		} else {
			results = append(results, checkResult{name: "sqlite version", err: fmt.Errorf("could not determine version")})
		}

		if st, err := store.Open(path); err != nil {
			results = append(results, checkResult{name: "open store", err: err})
		} else {
			if err := st.CheckIntegrity(); err != nil {
				results = append(results, checkResult{name: "integrity check", err: err})
			} else {
				results = append(results, checkResult{name: "integrity check", message: "ok"})
			}
			st.Close()
		}

		failed := false
		for _, r := range results {
			if r.err != nil {
				failed = true
				fmt.Printf("[FAIL] %-18s %v\n", r.name, r.err)
			} else {
				fmt.Printf("[ OK ] %-18s %s\n", r.name, r.message)
			}
		}
		if failed {
			return fmt.Errorf("one or more checks failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
