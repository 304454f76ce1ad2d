package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gosvn/pkg/conflict"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List unresolved tree conflicts in the working copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			wc, err := openWorkingCopy(ctx)
			if err != nil {
				return err
			}
			defer wc.root.Close()

			tx, err := wc.root.Begin(ctx)
			if err != nil {
				return err
			}
			defer tx.Rollback()

			victims, err := conflict.ListVictims(ctx, tx)
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}

			fmt.Println(renderHeader(" Working Copy Status "))
			if len(victims) == 0 {
				fmt.Println(colorGreen("  no tree conflicts"))
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Victim", "Operation", "Local change", "Incoming change")
			for _, victim := range victims {
				skel, err := conflict.Read(ctx, tx, victim)
				if err != nil {
					return fmt.Errorf("status failed: %w", err)
				}
				if skel == nil {
					continue
				}
				table.Append(colorRed(string(victim)), string(skel.Operation), string(skel.LocalChange), string(skel.IncomingChange))
			}
			table.Render()
			return nil
		},
	}
	return cmd
}
