package app

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nexus-dash/nexus/internal/client"
	"github.com/nexus-dash/nexus/internal/dashboard"
)

func init() { //nolint: gochecknoinits
	widgetAddCmd.Flags().StringVar(&widgetTitle, "title", "", "Widget title (defaults to the type name)")

	widgetCmd.AddCommand(
		widgetListCmd,
		widgetAddCmd,
		widgetRemoveCmd,
		widgetMoveCmd,
		widgetReorderCmd,
		widgetLinkCmd,
	)
	rootCmd.AddCommand(widgetCmd)
}

var (
	widgetTitle string

	widgetCmd = &cobra.Command{
		Use:   "widget",
		Short: "Edit the widgets of a running nexus server",
	}

	widgetListCmd = &cobra.Command{
		Use:   "list",
		Short: "List widgets in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := client.New(serverURL(), nil).Load(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0) //nolint:mnd
			_, _ = fmt.Fprintln(tw, "#\tID\tTYPE\tTITLE")

			for i, w := range d.Widgets {
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, w.ID, w.Type, w.Title)
			}

			return tw.Flush()
		},
	}

	widgetAddCmd = &cobra.Command{
		Use:       "add <type>",
		Short:     "Append a widget with the default config of its type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: widgetTypeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := dashboard.NewWidget(dashboard.WidgetType(args[0]))
			if err != nil {
				return err
			}

			if widgetTitle != "" {
				w.Title = widgetTitle
			}

			if err := editRemote(cmd.Context(), func(d *dashboard.Document) error {
				d.Add(w)
				return nil
			}); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), w.ID)

			return err
		},
	}

	widgetRemoveCmd = &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a widget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editRemote(cmd.Context(), func(d *dashboard.Document) error {
				return d.Remove(args[0])
			})
		},
	}

	widgetMoveCmd = &cobra.Command{
		Use:   "move <id> <index>",
		Short: "Move a widget to a new position",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index %q: %w", args[1], err)
			}

			return editRemote(cmd.Context(), func(d *dashboard.Document) error {
				return d.Move(args[0], index)
			})
		},
	}

	widgetReorderCmd = &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Put all widgets in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editRemote(cmd.Context(), func(d *dashboard.Document) error {
				return d.Reorder(args)
			})
		},
	}

	widgetLinkCmd = &cobra.Command{
		Use:   "link <id> <title> <url>",
		Short: "Add a link to a shortcuts widget",
		Args:  cobra.ExactArgs(3), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			return editRemote(cmd.Context(), func(d *dashboard.Document) error {
				i := d.Find(args[0])
				if i < 0 {
					return fmt.Errorf("%w: %s", dashboard.ErrWidgetNotFound, args[0])
				}

				if d.Widgets[i].Type != dashboard.WidgetShortcuts {
					return fmt.Errorf("widget %s is a %s widget, not shortcuts", args[0], d.Widgets[i].Type) //nolint:goerr113
				}

				return d.Widgets[i].AddLink(args[1], args[2])
			})
		},
	}
)

// editRemote loads the document from the server, applies fn and saves it back.
func editRemote(ctx context.Context, fn func(d *dashboard.Document) error) error {
	c := client.New(serverURL(), nil)

	d, err := c.Load(ctx)
	if err != nil {
		return err
	}

	if err := fn(&d); err != nil {
		return err
	}

	return c.Save(ctx, d)
}

func widgetTypeNames() []string {
	types := dashboard.Types()
	names := make([]string, len(types))

	for i, t := range types {
		names[i] = string(t)
	}

	return names
}
