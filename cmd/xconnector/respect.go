package main

import (
	"github.com/fwojciec/xconnector"
	"github.com/fwojciec/xconnector/pretty"
)

// spectra fetches the ReSpect records of accessions.
func (d *Dependencies) spectra(accessions []string) ([]xconnector.Spectrum, error) {
	src, err := d.source(string(xconnector.SourceReSpect))
	if err != nil {
		return nil, err
	}

	var out []xconnector.Spectrum
	for s := range d.Client.Spectra(d.Ctx, src, accessions) {
		d.logRecord(s.Record)
		out = append(out, s)
	}
	return out, nil
}

func (d *Dependencies) writeSpectra(accessions []string) error {
	spectra, err := d.spectra(accessions)
	if err != nil {
		return err
	}
	for _, s := range spectra {
		if err := pretty.WriteSpectrum(d.Stdout, s, d.Format); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the keyword command.
func (c *KeywordCmd) Run(deps *Dependencies) error {
	src, err := deps.source(string(xconnector.SourceReSpect))
	if err != nil {
		return deps.fail(err)
	}

	accessions, err := deps.Client.KeywordSearch(deps.Ctx, src, xconnector.KeywordQuery{
		Name:      c.Name,
		Formula:   c.Formula,
		ExactMass: c.ExactMass,
		Tolerance: c.Tolerance,
	})
	if err != nil {
		return deps.fail(err)
	}
	deps.logger().Info("ids", "source", src.ID, "count", len(accessions))

	if !c.Spectra {
		err = pretty.WriteIDs(deps.Stdout, accessions, deps.Format)
	} else {
		err = deps.writeSpectra(accessions)
	}
	if err != nil {
		return deps.fail(err)
	}
	return nil
}

// Run executes the spectrum command.
func (c *SpectrumCmd) Run(deps *Dependencies) error {
	if err := deps.writeSpectra(c.Accessions); err != nil {
		return deps.fail(err)
	}
	return nil
}

// Run executes the peaks command.
func (c *PeaksCmd) Run(deps *Dependencies) error {
	spectra, err := deps.spectra(c.Accessions)
	if err != nil {
		return deps.fail(err)
	}
	for _, s := range spectra {
		if err := pretty.PeakChart(deps.Stdout, s, c.Width); err != nil {
			return deps.fail(err)
		}
	}
	return nil
}
