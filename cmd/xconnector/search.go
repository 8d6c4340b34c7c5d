package main

import (
	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/pretty"
)

// writeIDs writes found accessions, or their general records when
// records is set.
func (d *Dependencies) writeIDs(src xconnector.Source, ids xconnector.IDSet, records bool) error {
	accessions := ids.Sorted()
	d.logger().Info("ids", "source", src.ID, "count", len(accessions))
	if !records {
		return pretty.WriteIDs(d.Stdout, accessions, d.Format)
	}

	var out []xconnector.Record
	for r := range d.Client.Records(d.Ctx, src, accessions) {
		d.logRecord(r)
		out = append(out, r)
	}
	return pretty.WriteRecords(d.Stdout, out, d.Format)
}

// Run executes the browse command.
func (c *BrowseCmd) Run(deps *Dependencies) error {
	src, err := deps.source(c.Source)
	if err != nil {
		return deps.fail(err)
	}

	filters, err := parsePairs("filter", c.Filter)
	if err != nil {
		return deps.fail(err)
	}
	lists, err := parsePairs("list", c.List)
	if err != nil {
		return deps.fail(err)
	}

	table, err := deps.Client.Browse(deps.Ctx, src, c.Browser, xconnector.BrowseRequest{
		Filters:  xconnector.FilterSet(filters),
		Lists:    lists,
		Switches: c.Switch,
	})
	if err != nil {
		return deps.fail(err)
	}

	if err := pretty.WriteTable(deps.Stdout, table, deps.Format); err != nil {
		return deps.fail(err)
	}
	return nil
}

// Run executes the chemquery command.
func (c *ChemQueryCmd) Run(deps *Dependencies) error {
	src, err := deps.source(c.Source)
	if err != nil {
		return deps.fail(err)
	}

	ids, err := deps.Client.ChemQuery(deps.Ctx, src, xconnector.ChemQuery{
		Start:      c.Start,
		End:        c.End,
		SearchType: c.Type,
		Statuses:   c.Status,
	})
	if err != nil {
		return deps.fail(err)
	}

	if err := deps.writeIDs(src, ids, c.Records); err != nil {
		return deps.fail(err)
	}
	return nil
}

// Run executes the lcms command.
func (c *LCMSCmd) Run(deps *Dependencies) error {
	src, err := deps.source(c.Source)
	if err != nil {
		return deps.fail(err)
	}

	table, err := deps.Client.MassSearch(deps.Ctx, src, xconnector.MassQuery{
		Masses:        c.Masses,
		IonMode:       c.IonMode,
		Adducts:       c.Adduct,
		Tolerance:     c.Tolerance,
		ToleranceUnit: c.Unit,
	})
	if err != nil {
		return deps.fail(err)
	}

	if err := pretty.WriteTable(deps.Stdout, table, deps.Format); err != nil {
		return deps.fail(err)
	}
	return nil
}

// Run executes the lcmsms command.
func (c *LCMSMSCmd) Run(deps *Dependencies) error {
	src, err := deps.source(c.Source)
	if err != nil {
		return deps.fail(err)
	}

	table, err := deps.Client.Tandem(deps.Ctx, src, xconnector.TandemQuery{
		ParentIonMass:          c.ParentMass,
		ParentIonTolerance:     c.ParentTolerance,
		ParentIonToleranceUnit: c.ParentUnit,
		IonMode:                c.IonMode,
		CollisionEnergy:        c.Energy,
		Peaks:                  c.Peak,
		MZTolerance:            c.MZTolerance,
		MZToleranceUnit:        c.MZUnit,
		Predicted:              c.Predicted,
	})
	if err != nil {
		return deps.fail(err)
	}

	if err := pretty.WriteTable(deps.Stdout, table, deps.Format); err != nil {
		return deps.fail(err)
	}
	return nil
}

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	src, err := deps.source(c.Source)
	if err != nil {
		return deps.fail(err)
	}

	ids, err := deps.Client.TextSearch(deps.Ctx, src, c.Query, c.Searcher)
	if err != nil {
		return deps.fail(err)
	}

	if err := deps.writeIDs(src, ids, c.Records); err != nil {
		return deps.fail(err)
	}
	return nil
}
