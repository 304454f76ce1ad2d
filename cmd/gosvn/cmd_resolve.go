package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gosvn/pkg/wcdb"
	"github.com/utkarsh5026/gosvn/pkg/workqueue"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <victim-relpath>",
		Short: "Resolve a moved-away tree conflict at the given path",
		Long: `Drives the conflict's update-move pipeline over the locally moved-to
subtree: a clean three-way merge applies directly, a textual conflict
writes marker files and leaves the victim conflicted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			wc, err := openWorkingCopy(ctx)
			if err != nil {
				return err
			}
			defer wc.root.Close()

			items, err := wc.resolver().UpdateMovedAwayConflictVictim(ctx, wcdb.Relpath(args[0]))
			if err != nil {
				return fmt.Errorf("resolve failed: %w", err)
			}

			runner := &workqueue.FileRunner{Pristine: wc.pristine}
			for _, item := range items {
				if err := runner.Run(ctx, item); err != nil {
					return fmt.Errorf("work queue failed: %w", err)
				}
			}

			fmt.Println(colorGreen(fmt.Sprintf("resolved %s (%d work item(s))", args[0], len(items))))
			return nil
		},
	}
	return cmd
}
