package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/modelcore/pkg/properties"
)

// withSession opens the model, runs fn, and closes the store.
func withSession(cmd *cobra.Command, flags *rootFlags, fn func(*session) error) error {
	s, err := openSession(flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

func newClassesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List the metamodel classes and their properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *session) error {
				classes := lo.Map(s.mm.Schema.Classes(), func(c *properties.Class, _ int) classJSON {
					return classJSON{
						Name:     c.Name(),
						Abstract: c.IsAbstract(),
						Supers:   lo.Map(c.Supers(), func(sc *properties.Class, _ int) string { return sc.Name() }),
						Properties: lo.Map(c.Properties(), func(p properties.Property, _ int) string {
							return p.Name()
						}),
					}
				})
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), classes)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "CLASS\tABSTRACT\tSUPERS\tPROPERTIES")
				for _, c := range classes {
					fmt.Fprintf(w, "%s\t%t\t%v\t%v\n", c.Name, c.Abstract, c.Supers, c.Properties)
				}
				return w.Flush()
			})
		},
	}
}

func newCreateCmd(flags *rootFlags) *cobra.Command {
	var name, owner string
	cmd := &cobra.Command{
		Use:   "create <class>",
		Short: "Create an element",
		Long: `Create an element of a concrete class and print its id.

--owner places the new element in the first composite association of the
owner that accepts it (packagedElement, ownedAttribute, ownedComment).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *session) error {
				class, err := s.class(args[0])
				if err != nil {
					return err
				}
				var parent *properties.Element
				if owner != "" {
					if parent, err = s.element(owner); err != nil {
						return err
					}
				}
				e, err := s.model.Create(class)
				if err != nil {
					return err
				}
				if name != "" {
					if err := e.Set(s.mm.Name.Name(), name); err != nil {
						return err
					}
				}
				if parent != nil {
					if err := adopt(parent, e); err != nil {
						return err
					}
				}
				if err := s.save(); err != nil {
					return err
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), summarize(s.mm, e))
				}
				fmt.Fprintln(cmd.OutOrStdout(), e.ID())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "element name (named elements only)")
	cmd.Flags().StringVar(&owner, "owner", "", "owning element id or qualified name")
	return cmd
}

// adopt links child into the first composite association of parent whose
// target accepts it.
func adopt(parent, child *properties.Element) error {
	slot, ok := lo.Find(parent.Class().Properties(), func(p properties.Property) bool {
		a, ok := p.(*properties.Association)
		return ok && a.IsComposite() && child.IsKindOf(a.Target())
	})
	if !ok {
		return userError("%s cannot own %s", parent, child.Class().Name())
	}
	return parent.Set(slot.Name(), child)
}

func newSetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <element> <property> <value>",
		Short: "Set an attribute or add a reference",
		Long: `Set an attribute or enumeration value, or link a reference.

Reference values are element ids or qualified names. Many-valued
associations append the value.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *session) error {
				e, err := s.element(args[0])
				if err != nil {
					return err
				}
				value, err := s.parseValue(e, args[1], args[2])
				if err != nil {
					return err
				}
				if err := e.Set(args[1], value); err != nil {
					return err
				}
				return s.save()
			})
		},
	}
}

func newUnsetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <element> <property> [value]",
		Short: "Reset an attribute or remove a reference",
		Long: `Reset an attribute to its default, or remove a reference.

Many-valued associations require the value to remove.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *session) error {
				e, err := s.element(args[0])
				if err != nil {
					return err
				}
				var value any
				if len(args) == 3 {
					if value, err = s.parseValue(e, args[1], args[2]); err != nil {
						return err
					}
				}
				if err := e.Delete(args[1], value); err != nil {
					return err
				}
				return s.save()
			})
		},
	}
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <element>",
		Short: "Delete an element and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *session) error {
				e, err := s.element(args[0])
				if err != nil {
					return err
				}
				before := s.model.Len()
				e.Unlink()
				if err := s.save(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d element(s)\n", before-s.model.Len())
				return nil
			})
		},
	}
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <element>",
		Short: "Show an element with all property values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *session) error {
				e, err := s.element(args[0])
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), describe(s.mm, e))
				}
				out := cmd.OutOrStdout()
				st := newStyles(out)
				fmt.Fprintln(out, st.title.Render(label(s.mm, e)))
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, p := range e.Class().Properties() {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", p.Name(), textValue(s.mm, e, p), st.muted.Render(propertyKind(p)))
				}
				return w.Flush()
			})
		},
	}
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var className string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List elements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, flags, func(s *session) error {
				elements := s.model.Elements()
				if className != "" {
					class, err := s.class(className)
					if err != nil {
						return err
					}
					elements = s.model.Select(class)
				}
				rows := lo.Map(elements, func(e *properties.Element, _ int) elementJSON {
					return summarize(s.mm, e)
				})
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCLASS\tQUALIFIED NAME")
				for _, r := range rows {
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Class, r.QualifiedName)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&className, "class", "", "only elements of this class or its subclasses")
	return cmd
}
