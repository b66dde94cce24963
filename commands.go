package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pdxmph/tasks-tui/internal/db"
	"github.com/pdxmph/tasks-tui/internal/tracker"
)

// taskFlags are the editable fields shared by add and edit
type taskFlags struct {
	description string
	area        string
	priority    string
	responsible string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "Task description")
	cmd.Flags().StringVarP(&f.area, "area", "a", "", "Area the task belongs to")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "urgent, waiting or no-urgency")
	cmd.Flags().StringVarP(&f.responsible, "responsible", "r", "", "Collaborator responsible for the task")
}

func initCmd(a *app) *cobra.Command {
	var withFixtures bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file and the task database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if _, err := os.Stat(a.configPath); os.IsNotExist(err) {
				if err := os.MkdirAll(filepath.Dir(a.configPath), 0755); err != nil {
					return fmt.Errorf("creating config directory: %w", err)
				}
				if err := a.cfg.SaveTo(a.configPath); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote config to %s\n", a.configPath)
			}

			if a.cfg.Database.Backend == "sqlite" {
				if _, err := os.Stat(a.cfg.Database.Path); err == nil {
					fmt.Fprintf(out, "Database already exists at %s\n", a.cfg.Database.Path)
				} else {
					if err := db.Initialize(a.cfg.Database.Path); err != nil {
						return err
					}
					fmt.Fprintf(out, "Created database at %s\n", a.cfg.Database.Path)
				}
			}

			if err := a.open(); err != nil {
				return err
			}
			if withFixtures {
				return seedFixtures(a.store, out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withFixtures, "fixtures", false, "Seed the new store with sample tasks")
	return cmd
}

// seedFixtures adds the sample tasks to an empty store. A store that
// already holds tasks is left alone.
func seedFixtures(store *tracker.Store, out io.Writer) error {
	if n := len(store.Tasks()); n > 0 {
		fmt.Fprintf(out, "Store already has %d tasks, skipping sample data\n", n)
		return nil
	}
	if err := tracker.SeedFixtures(store); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %d sample tasks\n", len(store.Tasks()))
	return nil
}

func addCmd(a *app) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			t, err := a.store.Create(tracker.NewTask{
				Title:       args[0],
				Description: f.description,
				Area:        f.area,
				Priority:    f.priority,
				Responsible: f.responsible,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", t.ID, t.Title)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var (
		f     taskFlags
		title string
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the fields of a task; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			cur, err := a.store.Get(id)
			if err != nil {
				return err
			}

			in := tracker.NewTask{
				Title:       cur.Title,
				Description: cur.Description,
				Area:        cur.Area,
				Priority:    string(cur.Priority),
				Responsible: cur.Responsible,
			}
			flags := cmd.Flags()
			if flags.Changed("title") {
				in.Title = title
			}
			if flags.Changed("desc") {
				in.Description = f.description
			}
			if flags.Changed("area") {
				in.Area = f.area
			}
			if flags.Changed("priority") {
				in.Priority = f.priority
			}
			if flags.Changed("responsible") {
				in.Responsible = f.responsible
			}

			t, err := a.store.Edit(id, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s\n", t.ID, t.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Task title")
	f.register(cmd)
	return cmd
}

func toggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			t, err := a.store.ToggleComplete(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Task %d is now %s\n", t.ID, t.Status())
			if a.store.View(tracker.FilterState{}, tracker.Descending).Stats.AllDone() {
				fmt.Fprintln(out, "All tasks complete! Nice work.")
			}
			return nil
		},
	}
}

func removeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			if err := a.store.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		},
	}
}

func attachCmd(a *app) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "attach ID [FILE]",
		Short: "Attach a file to a task, replacing any previous attachment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !remove && len(args) != 2 {
				return errors.New("attach needs a FILE, or --remove")
			}
			if err := a.open(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if remove {
				if _, err := a.store.Attach(id, nil); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed attachment from task %d\n", id)
				return nil
			}

			att, err := tracker.ReadAttachment(args[1], a.cfg.Attachments.MaxBytes)
			if err != nil {
				return err
			}
			if _, err := a.store.Attach(id, att); err != nil {
				return err
			}
			fmt.Fprintf(out, "Attached %s (%s, %d bytes) to task %d\n", att.Name, att.MIME, att.Size, id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the current attachment")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	var (
		areas, priorities, responsibles, statuses []string
		search, sortFlag                          string
		asJSON                                    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, pending first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}

			f, err := buildFilter(areas, priorities, responsibles, statuses, search)
			if err != nil {
				return err
			}
			order := a.cfg.SortOrder()
			if sortFlag != "" {
				if order, err = tracker.ParseSortOrder(sortFlag); err != nil {
					return err
				}
			}

			view := a.store.View(f, order)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view.Items)
			}
			return printTasks(out, view)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&areas, "area", "a", nil, "Only these areas")
	flags.StringSliceVarP(&priorities, "priority", "p", nil, "Only these priorities")
	flags.StringSliceVarP(&responsibles, "responsible", "r", nil, "Only these responsibles")
	flags.StringSliceVarP(&statuses, "status", "s", nil, "pending or completed")
	flags.StringVarP(&search, "search", "q", "", "Match text in title or description")
	flags.StringVar(&sortFlag, "sort", "", "asc (oldest first) or desc (newest first)")
	flags.BoolVar(&asJSON, "json", false, "Print tasks as JSON")
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			stats := a.store.View(tracker.FilterState{}, tracker.Descending).Stats
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(stats)
			}

			fmt.Fprintf(out, "%d/%d done (%d%%)\n", stats.Done, stats.Total, stats.Percent)
			if stats.AllDone() {
				fmt.Fprintln(out, "All tasks complete! Nice work.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stats as JSON")
	return cmd
}

// snapshot is the document written by export
type snapshot struct {
	Tasks         []tracker.Task         `json:"tasks" yaml:"tasks"`
	Areas         []string               `json:"areas" yaml:"areas"`
	Collaborators []tracker.Collaborator `json:"collaborators" yaml:"collaborators"`
	Stats         tracker.Stats          `json:"stats" yaml:"stats"`
}

func exportCmd(a *app) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task, area and collaborator as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}

			snap := snapshot{
				Tasks:         a.store.Tasks(),
				Areas:         a.store.Areas(),
				Collaborators: a.store.Collaborators(),
			}
			snap.Stats = tracker.Summarize(snap.Tasks)

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating export file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return writeSnapshot(out, format, snap)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func writeSnapshot(w io.Writer, format string, snap snapshot) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q (use json or yaml)", format)
	}
}

func areasCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "areas",
		Short: "Manage the area list",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			for _, area := range a.store.Areas() {
				fmt.Fprintln(cmd.OutOrStdout(), area)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			return a.store.AddArea(args[0])
		},
	}

	rm := &cobra.Command{
		Use:   "rm NAME",
		Short: "Remove an area; tasks keep it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			return a.store.RemoveArea(args[0])
		},
	}

	cmd.AddCommand(list, add, rm)
	cmd.RunE = list.RunE
	return cmd
}

func collaboratorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collaborators",
		Aliases: []string{"people"},
		Short:   "Manage the collaborator list",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List collaborators and their colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, c := range a.store.Collaborators() {
				fmt.Fprintf(w, "%s\t%s\n", c.Name, c.ColorToken)
			}
			return w.Flush()
		},
	}

	add := &cobra.Command{
		Use:   "add NAME [COLOR]",
		Short: "Add a collaborator, or change the color of an existing one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			color := ""
			if len(args) == 2 {
				color = args[1]
			}
			return a.store.AddCollaborator(args[0], color)
		},
	}

	rm := &cobra.Command{
		Use:   "rm NAME",
		Short: "Remove a collaborator; their tasks keep the name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			return a.store.RemoveCollaborator(args[0])
		},
	}

	cmd.AddCommand(list, add, rm)
	cmd.RunE = list.RunE
	return cmd
}

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show configuration and storage status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Config:   %s\n", a.configPath)
			fmt.Fprintf(out, "Backend:  %s\n", a.backend.Name())
			fmt.Fprintf(out, "Path:     %s\n", a.cfg.Database.Path)
			fmt.Fprintf(out, "Log:      %s (%s)\n", a.cfg.Log.Path, a.cfg.Log.Level)

			stats := tracker.Summarize(a.store.Tasks())
			fmt.Fprintf(out, "Tasks:    %d (%d done)\n", stats.Total, stats.Done)

			sqlite, ok := a.backend.(*db.DB)
			if !ok {
				return nil
			}
			entries, err := sqlite.ListEntries()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nStored keys:")
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, e := range entries {
				updated := "-"
				if e.UpdatedAt.Valid {
					updated = e.UpdatedAt.Time.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "  %s\t%d bytes\t%s\n", e.Key, e.Size, updated)
			}
			return w.Flush()
		},
	}
}

// buildFilter turns repeatable list flags into a filter. Repeating a value,
// or naming one status by two aliases, constrains once.
func buildFilter(areas, priorities, responsibles, statuses []string, search string) (tracker.FilterState, error) {
	var f tracker.FilterState

	f.Areas = tracker.NewSet(nonBlank(areas)...)
	f.Responsibles = tracker.NewSet(nonBlank(responsibles)...)

	f.Priorities = tracker.NewSet[tracker.Priority]()
	for _, s := range nonBlank(priorities) {
		p, err := tracker.ParsePriority(s)
		if err != nil {
			return f, err
		}
		f.Priorities[p] = struct{}{}
	}

	f.Statuses = tracker.NewSet[tracker.Status]()
	for _, s := range nonBlank(statuses) {
		st, err := tracker.ParseStatus(s)
		if err != nil {
			return f, err
		}
		f.Statuses[st] = struct{}{}
	}

	f.SetSearch(search)
	return f, nil
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func printTasks(w io.Writer, view tracker.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tAREA\tRESPONSIBLE\tTITLE")
	for _, t := range view.Items {
		done := " "
		if t.Completed {
			done = "x"
		}
		title := t.Title
		if t.Attachment != nil {
			title += " [" + t.Attachment.Name + "]"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, done, t.Priority, t.Area, t.Responsible, title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d shown, %d/%d done (%d%%)\n", len(view.Items), view.Stats.Done, view.Stats.Total, view.Stats.Percent)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
