package main

import (
	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/pretty"
)

// Run executes the reference command.
func (c *ReferenceCmd) Run(deps *Dependencies) error {
	dataset := xconnector.SourceID(c.Dataset)

	rows, err := deps.Reference.FindReference(deps.Ctx, dataset, c.Identifier, c.Values)
	if err != nil {
		return deps.fail(err)
	}
	if err := pretty.WriteTable(deps.Stdout, rows, deps.Format); err != nil {
		return deps.fail(err)
	}

	for _, name := range c.Related {
		related, err := deps.Reference.FindRelated(deps.Ctx, dataset, name, rows)
		if err != nil {
			return deps.fail(err)
		}
		if err := pretty.WriteTable(deps.Stdout, related, deps.Format); err != nil {
			return deps.fail(err)
		}
	}
	return nil
}
