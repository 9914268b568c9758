package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elwood/romcat"
)

var listCmd = &cobra.Command{
	Use:   "list <catalog.db>",
	Short: "List every machine in a store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		handle, err := romcat.OpenStore(args[0])
		if err != nil {
			return err
		}
		defer handle.Close()

		machines, err := handle.ListMachines(context.Background())
		if err != nil {
			return err
		}
		for _, m := range machines {
			kind := m.Type
			if kind == "" {
				kind = "-"
			}
			fmt.Printf("%-20s %-3s %-40s %s\n", m.Name, kind, m.Description, m.Year)
		}
		return nil
	},
}

var showSetKind string

var showCmd = &cobra.Command{
	Use:   "show <catalog.db> <machine>",
	Short: "Derive and print a ROM-set view for one machine",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		handle, err := romcat.OpenStore(args[0])
		if err != nil {
			return err
		}
		defer handle.Close()

		dossier, err := handle.LoadDossier(context.Background(), args[1])
		if err != nil {
			return err
		}

		roms := romcat.DeriveSet(dossier, romcat.SetKind(showSetKind))
		for _, r := range roms {
			fmt.Printf("%-24s %10d %s\n", r.Name, r.Size, r.CRC)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().StringVar(&showSetKind, "set", string(romcat.Merged),
		"set kind: split, merged, mergedplus, mergedfull, nonmerged, nonmergedplus, nonmergedfull")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
