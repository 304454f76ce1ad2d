package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gosvn/pkg/wcdb"
)

func newPropsetCmd() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "propset <propname> [propval] <target>",
		Short: "Set a versioned property on a working-copy path",
		Long: `Sets propname to propval on target. With --remove, propval is
omitted and the property is deleted instead. Revision properties and
recursive application are not supported: a single target, a single
property, set through the working-copy property table.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			propname := args[0]
			var propval, target string
			if remove {
				if len(args) != 2 {
					return fmt.Errorf("propset --remove takes exactly propname and target")
				}
				target = args[1]
			} else {
				if len(args) != 3 {
					return fmt.Errorf("propset requires propname, propval, and target")
				}
				propval = args[1]
				target = args[2]
			}

			wc, err := openWorkingCopy(ctx)
			if err != nil {
				return err
			}
			defer wc.root.Close()

			tx, err := wc.root.Begin(ctx)
			if err != nil {
				return err
			}
			if err := tx.SetProperty(ctx, wcdb.Relpath(target), propname, propval); err != nil {
				tx.Rollback()
				return fmt.Errorf("propset failed: %w", err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("propset failed: %w", err)
			}

			if remove {
				fmt.Println(colorGreen(fmt.Sprintf("property '%s' deleted on '%s'", propname, target)))
			} else {
				fmt.Println(colorGreen(fmt.Sprintf("property '%s' set on '%s'", propname, target)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "delete the property instead of setting it")
	return cmd
}
