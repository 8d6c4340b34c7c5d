package scrape

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/xconnector"
)

// Download is the outcome of one structure image download.
type Download struct {
	Accession string
	URL       string
	Bytes     int
	Status    xconnector.Status
	Reason    string
}

// Structures downloads the structure image of each accession into store
// and commits the store once all downloads were attempted. A failed
// download is reported in its Download and does not stop the batch; a
// failed save aborts the store and returns the error.
func (c *Client) Structures(ctx context.Context, src xconnector.Source, accessions []string, store xconnector.ImageStore) (_ []Download, err error) {
	if c.Images == nil {
		return nil, xconnector.Errorf(xconnector.EINVALID, "no image fetcher configured")
	}
	if _, err := xconnector.StructureURL(src, ""); err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, store.Abort())
		}
	}()

	downloads := make([]Download, 0, len(accessions))
	for _, acc := range accessions {
		u, _ := xconnector.StructureURL(src, acc)
		d := Download{Accession: acc, URL: u}

		data, ferr := c.Images.FetchImage(ctx, u)
		if ferr != nil {
			d.Status = xconnector.StatusFromError(ferr)
			d.Reason = ferr.Error()
			downloads = append(downloads, d)
			continue
		}

		if err := store.Save(ctx, &xconnector.Image{Accession: acc, URL: u, Data: data}); err != nil {
			return nil, fmt.Errorf("saving structure of %s: %w", acc, err)
		}
		d.Bytes = len(data)
		d.Status = xconnector.StatusFound
		downloads = append(downloads, d)
	}

	if err := store.Commit(); err != nil {
		return nil, fmt.Errorf("committing structures: %w", err)
	}
	return downloads, nil
}
