package main

import (
	"path/filepath"
	"strconv"

	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/fs"
	"github.com/fwojciec/xconnector/pretty"
)

// Run executes the structure command.
func (c *StructureCmd) Run(deps *Dependencies) error {
	src, err := deps.source(c.Source)
	if err != nil {
		return deps.fail(err)
	}

	dir := filepath.Clean(c.Dir)
	store := fs.NewImageStore(filepath.Dir(dir), filepath.Base(dir))

	downloads, err := deps.Client.Structures(deps.Ctx, src, c.Accessions, store)
	if err != nil {
		return deps.fail(err)
	}

	table := xconnector.Table{Columns: []string{"URL", "Bytes", "Status", "Reason"}}
	for _, d := range downloads {
		if d.Status != xconnector.StatusFound {
			deps.logger().Warn("structure", "accession", d.Accession, "status", d.Status, "reason", d.Reason)
		}
		table.Rows = append(table.Rows, xconnector.PropertyRow{
			Label:  d.Accession,
			Values: []string{d.URL, strconv.Itoa(d.Bytes), string(d.Status), d.Reason},
		})
	}

	if err := pretty.WriteTable(deps.Stdout, table, deps.Format); err != nil {
		return deps.fail(err)
	}
	return nil
}
