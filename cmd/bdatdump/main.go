// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	bdat "github.com/bdat-format/bdat"
	"github.com/spf13/cobra"
)

var (
	wantColumns bool
	wantRows    bool
)

func dumpFile(path string) error {
	f, err := bdat.Open(path, &bdat.Options{})
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		return err
	}

	fmt.Printf("%s: dialect %s, %d table(s)\n", path, f.Dialect, len(f.Tables))
	for _, t := range f.Tables {
		fmt.Printf("  %s: %d column(s), %d row(s), base id %d\n",
			t.Name, len(t.Columns), len(t.Rows), t.BaseID)
		if wantColumns {
			for _, c := range t.Columns {
				fmt.Printf("    - %s (type %d)\n", c.Label, c.ValueType)
			}
		}
		if wantRows {
			for _, r := range t.Rows {
				fmt.Printf("    row %d: %d cell(s)\n", r.ID, len(r.Cells))
			}
		}
	}
	for _, a := range f.Anomalies {
		fmt.Printf("  anomaly: %s\n", a)
	}
	return nil
}

func main() {
	var dumpCmd = &cobra.Command{
		Use:   "dump [file]",
		Short: "Dumps table, column and row counts for a BDAT file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpFile(args[0])
		},
	}
	dumpCmd.Flags().BoolVarP(&wantColumns, "columns", "", false, "list column labels and types")
	dumpCmd.Flags().BoolVarP(&wantRows, "rows", "", false, "list row ids and cell counts")

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Prints the bdatdump version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("bdatdump 0.1.0")
		},
	}

	var rootCmd = &cobra.Command{
		Use:   "bdatdump",
		Short: "A BDAT table file inspector",
		Long:  "A demonstration CLI over the bdat decoder, dumping table/column/row counts",
	}
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
