package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gosvn/pkg/wcdb"
	"github.com/utkarsh5026/gosvn/pkg/workqueue"
)

func newSwitchCmd() *cobra.Command {
	var autoMerge bool
	var target string

	cmd := &cobra.Command{
		Use:   "switch <url>",
		Short: "Switch (or update) the working copy against a repository URL",
		Long: `Fetches the delta between the working copy's current BASE revision
and the latest revision at the given repository-access URL, and applies
it to the working copy. Locally moved-away nodes that receive an
incoming edit are recorded as tree-conflict victims; --auto-merge hands
each one straight to the resolve pipeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			wc, err := openWorkingCopy(ctx)
			if err != nil {
				return err
			}
			defer wc.root.Close()

			if !cmd.Flags().Changed("auto-merge") {
				autoMerge = wc.config.AutoMergeTreeConflicts()
			}

			sw := wc.switcher(autoMerge)
			result, err := sw.Run(ctx, wcdb.Relpath(target), args[0])
			if err != nil {
				return fmt.Errorf("switch failed: %w", err)
			}

			runner := &workqueue.FileRunner{Pristine: wc.pristine}
			for _, item := range result.WorkItems {
				if err := runner.Run(ctx, item); err != nil {
					return fmt.Errorf("work queue failed: %w", err)
				}
			}

			fmt.Println(renderHeader(" Switch complete "))
			fmt.Printf("%s %d work item(s) applied\n", colorCyan("•"), len(result.WorkItems))
			if len(result.TreeConflictVictims) == 0 {
				fmt.Println(colorGreen("  no tree conflicts"))
				return nil
			}
			fmt.Println(colorYellow(fmt.Sprintf("  %d tree conflict(s):", len(result.TreeConflictVictims))))
			for _, v := range result.TreeConflictVictims {
				fmt.Printf("    %s %s\n", colorRed("!"), v)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "working-copy relpath to switch (default: root)")
	cmd.Flags().BoolVar(&autoMerge, "auto-merge", false, "automatically resolve moved-away tree conflicts raised by this switch")
	return cmd
}
