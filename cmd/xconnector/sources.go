package main

import (
	"strings"

	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/pretty"
)

// Run executes the sources command.
func (c *SourcesCmd) Run(deps *Dependencies) error {
	table := xconnector.Table{Columns: []string{"Name", "Location", "Tables", "Queries"}}
	for _, src := range xconnector.Sources() {
		if deps.BaseURL != "" {
			src = src.WithBaseURL(deps.BaseURL)
		}
		table.Rows = append(table.Rows, xconnector.PropertyRow{
			Label: string(src.ID),
			Values: []string{
				src.Name,
				src.BaseURL,
				strings.Join(src.SectionNames(), " "),
				strings.Join(queries(src), " "),
			},
		})
	}
	for _, ds := range xconnector.Datasets() {
		related := make([]string, len(ds.Related))
		for i, r := range ds.Related {
			related[i] = r.Name
		}
		table.Rows = append(table.Rows, xconnector.PropertyRow{
			Label:  string(ds.ID),
			Values: []string{ds.Name, ds.File, strings.Join(related, " "), "reference:" + strings.Join(ds.IdentifierNames(), ",")},
		})
	}

	if err := pretty.WriteTable(deps.Stdout, table, deps.Format); err != nil {
		return deps.fail(err)
	}
	return nil
}

// queries names the query commands src supports; browse endpoints are
// listed as browse:<name>.
func queries(src xconnector.Source) []string {
	var out []string
	for _, b := range src.Browsers {
		out = append(out, "browse:"+b.Name)
	}
	if src.ChemQuery != nil {
		out = append(out, "chemquery")
	}
	if src.MassSearch != nil {
		out = append(out, "lcms")
	}
	if src.TandemPath != "" {
		out = append(out, "lcmsms")
	}
	if src.TextSearch != nil {
		out = append(out, "search")
	}
	if src.ID == xconnector.SourceReSpect {
		out = append(out, "keyword", "spectrum", "peaks")
	}
	if src.StructurePath != "" {
		out = append(out, "structure")
	}
	return out
}
