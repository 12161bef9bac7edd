package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/devfolio-io/devfolio/internal/pkg/slug"
	"github.com/devfolio-io/devfolio/internal/pkg/validation"
	"github.com/devfolio-io/devfolio/pkg/client"
	"github.com/devfolio-io/devfolio/pkg/editstate"
	"github.com/spf13/cobra"
)

var ProjectsCmd = NewProjectsCmd()

// NewProjectsCmd builds the projects command tree with fresh flag state.
func NewProjectsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Manage portfolio projects",
	}
	root.AddCommand(newProjectsListCmd(), newProjectsGetCmd(), newProjectsCreateCmd(),
		newProjectsEditCmd(), newProjectsDeleteCmd())
	return root
}

func newProjectsListCmd() *cobra.Command {
	var visibilities []string
	var public bool
	c := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			var (
				items []client.ProjectSummary
				err   error
			)
			if public {
				items, err = newClient().ListPublicProjects(ctx)
			} else {
				items, err = newClient().ListProjects(ctx, upper(visibilities)...)
			}
			if err != nil {
				return err
			}
			renderSummaries(c.OutOrStdout(), items)
			return nil
		},
	}
	c.Flags().StringSliceVar(&visibilities, "visibility", nil, "filter by visibility (PUBLIC, PRIVATE, UNLISTED)")
	c.Flags().BoolVar(&public, "public", false, "list the public portfolio without a session")
	return c
}

func newProjectsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			p, err := newClient().GetProject(ctx, args[0])
			if err != nil {
				return err
			}
			renderProject(c.OutOrStdout(), p)
			return nil
		},
	}
}

type projectFlags struct {
	title, slug, short, description, github, visibility string
	badges                                              []string
}

func (f *projectFlags) bind(c *cobra.Command) {
	c.Flags().StringVar(&f.title, "title", "", "project title")
	c.Flags().StringVar(&f.slug, "slug", "", "URL slug, derived from the title when omitted; characters outside [a-z0-9-] are dropped")
	c.Flags().StringVar(&f.short, "short", "", "short description")
	c.Flags().StringVar(&f.description, "description", "", "rich-text description (HTML)")
	c.Flags().StringVar(&f.github, "github", "", "GitHub repository URL")
	c.Flags().StringVar(&f.visibility, "visibility", "", "PUBLIC, PRIVATE or UNLISTED")
	c.Flags().StringSliceVar(&f.badges, "badge", nil, "badge, repeatable")
}

func newProjectsCreateCmd() *cobra.Command {
	var f projectFlags
	c := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			req := client.CreateProjectRequest{
				Title:      f.title,
				Slug:       slug.Sanitize(f.slug),
				Visibility: strings.ToUpper(f.visibility),
				Badges:     f.badges,
			}
			if c.Flags().Changed("short") {
				req.ShortDescription = &f.short
			}
			if c.Flags().Changed("description") {
				req.Description = &f.description
			}
			if c.Flags().Changed("github") {
				req.GithubURL = &f.github
			}

			id, err := newClient().CreateProject(ctx, req)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintln(c.OutOrStdout(), RenderSuccess("created "+id))
			return nil
		},
	}
	f.bind(c)
	_ = c.MarkFlagRequired("title")
	return c
}

func newProjectsEditCmd() *cobra.Command {
	var f projectFlags
	c := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a project and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()
			return runProjectsEdit(ctx, c, args[0], &f)
		},
	}
	f.bind(c)
	return c
}

func runProjectsEdit(ctx context.Context, c *cobra.Command, id string, f *projectFlags) error {
	api := newClient()
	current, err := api.GetProject(ctx, id)
	if err != nil {
		return err
	}

	store := editstate.NewStore()
	store.Load(*current)
	editor := editstate.NewEditor(store, editstate.NewDebouncer(editstate.DefaultDebounce))

	changed := c.Flags().Changed
	err = editor.Edit(func(p *client.Project) {
		if changed("title") {
			p.Title = f.title
		}
		if changed("slug") {
			p.Slug = slug.Sanitize(f.slug)
		}
		if changed("short") {
			p.ShortDescription = &f.short
		}
		if changed("description") {
			p.Description = &f.description
		}
		if changed("github") {
			p.GithubURL = &f.github
		}
		if changed("visibility") {
			p.Visibility = strings.ToUpper(f.visibility)
		}
		if changed("badge") {
			p.Badges = f.badges
		}
	})
	if err != nil {
		return err
	}
	editor.Flush()

	out := c.OutOrStdout()
	if !store.Dirty() {
		fmt.Fprintln(out, MutedStyle.Render("nothing to save"))
		return nil
	}

	res, err := editstate.NewSaver(store, api, nil).Save(ctx)
	if err != nil {
		return describe(err)
	}
	if res.Stale {
		fmt.Fprintln(out, RenderWarning("saved, but newer edits are still pending"))
		return nil
	}
	fmt.Fprintln(out, RenderSuccess("saved "+id))
	return nil
}

func newProjectsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			if err := newClient().DeleteProject(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), RenderSuccess("deleted "+args[0]))
			return nil
		},
	}
}

func renderSummaries(w io.Writer, items []client.ProjectSummary) {
	if len(items) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("no projects"))
		return
	}
	t := table.New().
		Headers("ID", "TITLE", "SLUG", "VISIBILITY", "BADGES").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return plainStyle
		})
	for _, it := range items {
		t.Row(it.ID, it.Title, it.Slug, it.Visibility, strings.Join(it.Badges, ", "))
	}
	fmt.Fprintln(w, t.Render())
}

func renderProject(w io.Writer, p *client.Project) {
	field := func(name, value string) {
		fmt.Fprintf(w, "%s %s\n", HeaderStyle.Render(fmt.Sprintf("%-12s", name)), value)
	}
	field("id", p.ID)
	field("title", p.Title)
	field("slug", p.Slug)
	field("visibility", p.Visibility)
	field("short", deref(p.ShortDescription))
	field("github", deref(p.GithubURL))
	field("badges", strings.Join(p.Badges, ", "))
	field("created", p.CreatedAt.Format("2006-01-02 15:04"))
	if d := deref(p.Description); d != "" {
		field("description", d)
	}
}

// describe expands field-level errors into one line per field.
func describe(err error) error {
	var fe *validation.FieldErrors
	var ae *client.APIError
	var fields map[string][]string
	switch {
	case errors.As(err, &fe):
		fields = fe.Fields
	case errors.As(err, &ae) && len(ae.Fields) > 0:
		fields = ae.Fields
	default:
		return err
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("validation failed")
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %s: %s", name, strings.Join(fields[name], ", "))
	}
	return errors.New(b.String())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func upper(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToUpper(strings.TrimSpace(s)))
	}
	return out
}
