package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/leadr/internal/core/lead"
	"github.com/hay-kot/leadr/internal/core/session"
	"github.com/hay-kot/leadr/internal/core/validate"
	"github.com/hay-kot/leadr/internal/dashboard"
	"github.com/hay-kot/leadr/internal/printer"
)

type LeadsCmd struct {
	flags  *Flags
	format string
	input  leadInput
}

// leadInput holds the field flags shared by add and edit.
type leadInput struct {
	firstName string
	lastName  string
	age       int
	date      string
	level     string
	notes     string
}

// NewLeadsCmd creates a new leads command
func NewLeadsCmd(flags *Flags) *LeadsCmd {
	return &LeadsCmd{flags: flags}
}

// Register adds the leads command group to the application
func (cmd *LeadsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "leads",
		Aliases: []string{"l"},
		Usage:   "List and manage leads",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List all leads",
				UsageText: "leadr leads ls [--format table|json]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (table, json)",
						Value:       "table",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "add",
				Usage:     "Create a lead",
				UsageText: "leadr leads add --first-name Jo --last-name Ann --age 30 --date 2024-01-05 --level hot --notes x",
				Flags:     cmd.fieldFlags(),
				Action:    cmd.runAdd,
			},
			{
				Name:      "edit",
				Usage:     "Update a lead",
				UsageText: "leadr leads edit <id> [field flags]",
				Description: `Loads the lead, applies the given field flags on top of its current
values and saves it. Fields without a flag keep their value.`,
				Flags:  cmd.fieldFlags(),
				Action: cmd.runEdit,
			},
			{
				Name:      "rm",
				Usage:     "Delete a lead",
				UsageText: "leadr leads rm <id>",
				Action:    cmd.runRemove,
			},
		},
	})

	return app
}

func (cmd *LeadsCmd) fieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "first-name", Usage: "first name", Destination: &cmd.input.firstName},
		&cli.StringFlag{Name: "last-name", Usage: "last name", Destination: &cmd.input.lastName},
		&cli.IntFlag{Name: "age", Usage: "age in years", Destination: &cmd.input.age},
		&cli.StringFlag{Name: "date", Usage: "date of contact (YYYY-MM-DD)", Destination: &cmd.input.date},
		&cli.StringFlag{Name: "level", Usage: "interest level (very-hot, hot, cold)", Value: string(lead.LevelHot), Destination: &cmd.input.level},
		&cli.StringFlag{Name: "notes", Usage: "free-form notes", Destination: &cmd.input.notes},
	}
}

// apply overlays the flags that were set on base.
func (in leadInput) apply(c *cli.Command, base lead.Fields) lead.Fields {
	if c.IsSet("first-name") {
		base.FirstName = in.firstName
	}
	if c.IsSet("last-name") {
		base.LastName = in.lastName
	}
	if c.IsSet("age") {
		base.Age = in.age
	}
	if c.IsSet("date") {
		base.DateOfContact = in.date
	}
	if c.IsSet("level") {
		// unknown levels are left as typed so validation reports them
		base.Level = lead.Level(in.level)
		if l, err := lead.ParseLevel(in.level); err == nil {
			base.Level = l
		}
	}
	if c.IsSet("notes") {
		base.Notes = in.notes
	}
	return base
}

func (cmd *LeadsCmd) open(ctx context.Context) (*dashboard.Reconciler, error) {
	if err := cmd.flags.requireRoute(ctx, session.RouteDashboard); err != nil {
		return nil, err
	}
	return cmd.flags.newDashboard(), nil
}

func (cmd *LeadsCmd) runList(ctx context.Context, c *cli.Command) error {
	d, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Load(ctx); err != nil {
		return cmd.flags.handleAuthError(ctx, err)
	}
	leads := d.Snapshot().Leads
	out := c.Root().Writer

	if cmd.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(leads)
	}

	if len(leads) == 0 {
		printer.Ctx(ctx).Infof("No leads found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tAGE\tCONTACTED\tLEVEL\tNOTES")
	for _, l := range leads {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			l.ID, l.FullName(), l.Age, l.ContactDate(), l.Level, firstLine(l.Notes, 40))
	}
	return w.Flush()
}

func (cmd *LeadsCmd) runAdd(ctx context.Context, c *cli.Command) error {
	d, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	d.SetFields(cmd.input.apply(c, dashboard.EmptyDraft().Fields))

	saved, err := d.Submit(ctx)
	if err != nil {
		return cmd.flags.handleAuthError(ctx, err)
	}

	printer.Ctx(ctx).Success("Lead created", saved.ID)
	return nil
}

func (cmd *LeadsCmd) runEdit(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if err := validate.LeadID(id); err != nil {
		return err
	}

	d, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Load(ctx); err != nil {
		return cmd.flags.handleAuthError(ctx, err)
	}
	if err := d.EditByID(id); err != nil {
		return err
	}

	d.SetFields(cmd.input.apply(c, d.Snapshot().Draft.Fields))

	saved, err := d.Submit(ctx)
	if err != nil {
		return cmd.flags.handleAuthError(ctx, err)
	}

	printer.Ctx(ctx).Success("Lead updated", saved.ID)
	return nil
}

func (cmd *LeadsCmd) runRemove(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if err := validate.LeadID(id); err != nil {
		return err
	}

	d, err := cmd.open(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Delete(ctx, id); err != nil {
		return cmd.flags.handleAuthError(ctx, err)
	}

	printer.Ctx(ctx).Successf("Lead %s deleted", id)
	return nil
}

// firstLine returns the first line of s, shortened to limit runes.
func firstLine(s string, limit int) string {
	for i, r := range s {
		if r == '\n' {
			s = s[:i]
			break
		}
	}
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit-1]) + "…"
	}
	return s
}
