package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/pretty"
)

// logRecord notes a record that fell back to its sentinel.
func (d *Dependencies) logRecord(r xconnector.Record) {
	if !r.Found() {
		d.logger().Warn("record", "accession", r.Accession, "status", r.Status, "reason", r.Reason)
	}
}

// Run executes the info command.
func (c *InfoCmd) Run(deps *Dependencies) error {
	src, err := deps.source(c.Source)
	if err != nil {
		return deps.fail(err)
	}

	var records []xconnector.Record
	for r := range deps.Client.Records(deps.Ctx, src, c.Accessions) {
		deps.logRecord(r)
		records = append(records, r)
	}

	if err := pretty.WriteRecords(deps.Stdout, records, deps.Format); err != nil {
		return deps.fail(err)
	}
	return nil
}

// Run executes the section command.
func (c *SectionCmd) Run(deps *Dependencies) error {
	src, err := deps.source(c.Source)
	if err != nil {
		return deps.fail(err)
	}

	seq, err := deps.Client.Sections(deps.Ctx, src, c.Section, c.Accessions)
	if err != nil {
		deps.fail(err)
		if xconnector.ErrorCode(err) == xconnector.ESECTION {
			fmt.Fprintf(deps.Stderr, "Hint: %s sections are %s\n", src.ID, strings.Join(src.SectionNames(), ", "))
		}
		return err
	}

	var sections []xconnector.SectionTable
	for s := range seq {
		if !s.Found() {
			deps.logger().Warn("section", "accession", s.Accession, "section", s.Section, "status", s.Status, "reason", s.Reason)
		}
		sections = append(sections, s)
	}

	if err := pretty.WriteTable(deps.Stdout, xconnector.Combine(sections...), deps.Format); err != nil {
		return deps.fail(err)
	}
	return nil
}

// Run executes the full command.
func (c *FullCmd) Run(deps *Dependencies) error {
	src, err := deps.source(c.Source)
	if err != nil {
		return deps.fail(err)
	}

	var records []xconnector.Record
	for r := range deps.Client.FullRecords(deps.Ctx, src, c.Accessions) {
		deps.logRecord(r)
		records = append(records, r)
	}

	if err := pretty.WriteRecords(deps.Stdout, records, deps.Format); err != nil {
		return deps.fail(err)
	}
	return nil
}
