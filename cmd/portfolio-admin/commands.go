package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rpupo63/portfolio-site-backend/admin"
	"github.com/rpupo63/portfolio-site-backend/auth"
	"github.com/rpupo63/portfolio-site-backend/client"
	"github.com/rpupo63/portfolio-site-backend/models"
)

func (a *app) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}
			if email == "" {
				if email, err = a.prompt("Email: "); err != nil {
					return err
				}
			}
			password, err := a.prompt("Password: ")
			if err != nil {
				return err
			}

			token, identity, err := client.New(s.Server).SignIn(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("sign in: %w", err)
			}

			s.Token = token
			if err := s.save(a.settingsPath); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s until %s\n", identity.Email, identity.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(a.settingsPath)
			if err != nil {
				return err
			}
			s.Token = ""
			if err := s.save(a.settingsPath); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), a.confirmer(false))
			if err != nil {
				return err
			}
			defer sess.stop()

			a.printProjects(sess.ctrl.Projects())
			return nil
		},
	}
}

// projectFlags are the editable fields shared by create and edit.
type projectFlags struct {
	title       string
	description string
	demoLink    string
	viewText    string
	thumbnail   string
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "project title")
	cmd.Flags().StringVar(&f.description, "description", "", "project description")
	cmd.Flags().StringVar(&f.demoLink, "demo-link", "", "link opened by the project's button")
	cmd.Flags().StringVar(&f.viewText, "view-text", "", "button label")
	cmd.Flags().StringVar(&f.thumbnail, "thumbnail", "", "path to a thumbnail image (max 1 MB)")
}

// apply copies the flags the user set onto the form.
func (f *projectFlags) apply(cmd *cobra.Command, form *admin.Form) {
	if cmd.Flags().Changed("title") {
		form.Title = f.title
	}
	if cmd.Flags().Changed("description") {
		form.Description = f.description
	}
	if cmd.Flags().Changed("demo-link") {
		form.DemoLink = f.demoLink
	}
	if cmd.Flags().Changed("view-text") {
		form.ViewText = f.viewText
	}
}

func (f *projectFlags) selectThumbnail(ctrl *admin.Controller) error {
	if f.thumbnail == "" {
		return nil
	}
	data, err := os.ReadFile(f.thumbnail)
	if err != nil {
		return fmt.Errorf("read thumbnail: %w", err)
	}
	return ctrl.SelectFile(filepath.Base(f.thumbnail), data)
}

func (a *app) createCmd() *cobra.Command {
	var flags projectFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a project at the end of the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), a.confirmer(false))
			if err != nil {
				return err
			}
			defer sess.stop()

			if err := sess.ctrl.BeginCreate(); err != nil {
				return err
			}
			if err := sess.ctrl.UpdateForm(func(form *admin.Form) { flags.apply(cmd, form) }); err != nil {
				return err
			}
			if err := flags.selectThumbnail(sess.ctrl); err != nil {
				return err
			}
			return sess.ctrl.Submit(cmd.Context())
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var flags projectFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a project's fields or thumbnail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}

			sess, err := a.openSession(cmd.Context(), a.confirmer(false))
			if err != nil {
				return err
			}
			defer sess.stop()

			project, ok := findProject(sess.ctrl.Projects(), id)
			if !ok {
				return fmt.Errorf("project %s not found", id)
			}
			if err := sess.ctrl.BeginEdit(project); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Editing %q (thumbnail %s)\n", project.Title, sess.ctrl.ThumbnailFileName())

			if err := sess.ctrl.UpdateForm(func(form *admin.Form) { flags.apply(cmd, form) }); err != nil {
				return err
			}
			if err := flags.selectThumbnail(sess.ctrl); err != nil {
				return err
			}
			return sess.ctrl.Submit(cmd.Context())
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) reorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <index> up|down",
		Short: "Swap a project with its neighbour",
		Long:  "Swap the project at <index> (as shown by list) with the one above or below it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			direction, err := admin.ParseDirection(args[1])
			if err != nil {
				return err
			}

			sess, err := a.openSession(cmd.Context(), a.confirmer(false))
			if err != nil {
				return err
			}
			defer sess.stop()

			if err := sess.ctrl.Reorder(cmd.Context(), index, direction); err != nil {
				return err
			}
			a.printProjects(sess.ctrl.Projects())
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}

			sess, err := a.openSession(cmd.Context(), a.confirmer(yes))
			if err != nil {
				return err
			}
			defer sess.stop()

			before := len(sess.ctrl.Projects())
			if err := sess.ctrl.Delete(cmd.Context(), id); err != nil {
				return err
			}
			if len(sess.ctrl.Projects()) == before {
				fmt.Fprintln(a.out, "Nothing deleted")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.prompt("Password: ")
			if err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, hash)
			return nil
		},
	}
}

func (a *app) printProjects(projects []models.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(a.out, "No projects yet")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tORDER\tID\tTITLE\tTHUMBNAIL")
	for i, p := range projects {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", i, p.Order, p.ID, p.Title, admin.FileNameFromURL(p.Thumbnail))
	}
	tw.Flush()
}

func findProject(projects []models.Project, id uuid.UUID) (models.Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}
