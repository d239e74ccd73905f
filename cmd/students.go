package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List registered students",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openConvoStore(cmd)
		if err != nil {
			return err
		}
		infos, err := store.Students()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintln(out, "no students registered")
			return nil
		}
		for _, info := range infos {
			fmt.Fprintf(out, "%-12s %-16s %s\n", info.StudentID, info.StudentName, info.Timestamp)
		}
		return nil
	},
}
