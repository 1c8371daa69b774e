package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/CognitoIQ/xsdtypes/xsd"
)

type loadCmd struct {
	Elements bool     `help:"Also register element declarations."`
	Schemas  []string `arg:"" optional:"" name:"schema" help:"Schema files or URLs."`
}

func (c *loadCmd) Run(a *app) error {
	locations, err := a.locations(c.Schemas)
	if err != nil {
		return err
	}
	r, diags, err := a.build(locations, c.Elements || a.cfg.IncludeElements)
	if err != nil {
		return err
	}
	st := r.Stats()
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "namespaces\t%d\n", st.Namespaces)
	fmt.Fprintf(w, "types\t%d\n", st.Types)
	fmt.Fprintf(w, "elements\t%d\n", st.Elements)
	fmt.Fprintf(w, "attributes\t%d\n", st.Attributes)
	fmt.Fprintf(w, "attribute groups\t%d\n", st.AttributeGroups)
	fmt.Fprintf(w, "groups\t%d\n", st.Groups)
	if err := w.Flush(); err != nil {
		return err
	}
	for _, d := range diags {
		fmt.Fprintln(a.out, d.Error())
	}
	return nil
}

type queryCmd struct {
	Type    string   `required:"" short:"t" help:"Type to ask about, such as xs:int or num:price."`
	Numeric bool     `help:"Report whether the type is numeric."`
	Atomic  bool     `help:"Report the built-in type the type derives from."`
	Derives []string `help:"Report whether the type derives from any of these types."`
	Union   bool     `help:"Answer true for union types instead of false."`
	Schemas []string `arg:"" optional:"" name:"schema" help:"Schema files or URLs."`
}

func (c *queryCmd) Run(a *app) error {
	locations, err := a.locations(c.Schemas)
	if err != nil {
		return err
	}
	r, err := a.cached(locations)
	if err != nil {
		return err
	}
	if !r.HasType(c.Type) {
		return fmt.Errorf("type %s: %w", c.Type, xsd.ErrNotFound)
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "type\t%s\n", r.Key(c.Type))
	if c.Numeric {
		fmt.Fprintf(w, "numeric\t%t\n", r.IsNumeric(c.Type))
	}
	if c.Atomic {
		atomic, err := r.AtomicTypeErr(c.Type)
		if err != nil {
			fmt.Fprintf(w, "atomic\t-\t%v\n", err)
		} else {
			fmt.Fprintf(w, "atomic\t%s\n", atomic)
		}
	}
	if len(c.Derives) > 0 {
		ok, err := r.ResolvesToBaseTypeErr(c.Type, c.Derives, c.Union)
		if err != nil {
			fmt.Fprintf(w, "derives\t%s\t%v\n", strings.Join(c.Derives, ","), err)
		} else {
			fmt.Fprintf(w, "derives\t%s\t%t\n", strings.Join(c.Derives, ","), ok)
		}
	}
	return w.Flush()
}

type snapshotCmd struct {
	Out     string   `short:"o" default:"-" help:"Output file, or - for standard output."`
	Schemas []string `arg:"" name:"schema" help:"Schema files or URLs."`
}

func (c *snapshotCmd) Run(a *app) error {
	locations, err := a.locations(c.Schemas)
	if err != nil {
		return err
	}
	r, diags, err := a.build(locations, a.cfg.IncludeElements)
	if err != nil {
		return err
	}
	a.warn(diags)

	data, err := json.MarshalIndent(r.ToSnapshot(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if c.Out == "-" {
		_, err = a.out.Write(data)
		return err
	}
	return os.WriteFile(c.Out, data, 0o644)
}
