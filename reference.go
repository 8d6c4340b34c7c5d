package xconnector

import (
	"context"
	"maps"
	"slices"
)

// Dataset describes a static reference dataset distributed as CSV.
type Dataset struct {
	ID   SourceID
	Name string

	// File is the dataset's conventional CSV file name.
	File string

	// Identifiers maps a lookup identifier to the column it matches.
	Identifiers map[string]string

	// Related are auxiliary tables joined to the dataset's LinkColumn.
	Related    []RelatedTable
	LinkColumn string
}

// RelatedTable is an auxiliary CSV table keyed by KeyColumn.
type RelatedTable struct {
	Name      string
	File      string
	KeyColumn string
}

// IdentifierNames returns the dataset's lookup identifiers in sorted order.
func (d Dataset) IdentifierNames() []string {
	return slices.Sorted(maps.Keys(d.Identifiers))
}

// Clone returns a deep copy of the dataset descriptor.
func (d Dataset) Clone() Dataset {
	d.Identifiers = maps.Clone(d.Identifiers)
	d.Related = slices.Clone(d.Related)
	return d
}

// RelatedTable returns the named auxiliary table of the dataset.
func (d Dataset) RelatedTable(name string) (RelatedTable, bool) {
	for _, r := range d.Related {
		if r.Name == name {
			return r, true
		}
	}
	return RelatedTable{}, false
}

var datasets = []Dataset{
	{
		ID:   SourceBEDB,
		Name: "Blood Exposome Database",
		File: "BloodExpsomeDatabase_version_1.0.csv",
		Identifiers: map[string]string{
			"hmdb":     "HMDB_ID",
			"cid":      "PubChem_CID",
			"kegg":     "KEGG_ID",
			"formula":  "Molecular_Formula",
			"smiles":   "CanonicalSMILES",
			"inchikey": "InChIKey",
		},
	},
	{
		ID:   SourcePEDB,
		Name: "Phenol-Explorer",
		File: "Polyphenol_Metabolites.csv",
		Identifiers: map[string]string{
			"pubchem_compound_id": "pubchem_compound_id",
			"formula":             "formula",
			"name":                "name",
		},
		LinkColumn: "id",
		Related: []RelatedTable{
			{Name: "classification", File: "polyphenol_classification.csv", KeyColumn: "compound_id"},
			{Name: "composition", File: "Polyphenols_having_composition_data.csv", KeyColumn: "id"},
		},
	},
}

// Datasets returns the descriptors of every reference dataset.
func Datasets() []Dataset {
	return cloneEach(datasets, Dataset.Clone)
}

// LookupDataset returns the descriptor of the dataset with the given id.
// Returns ENOTFOUND for an unknown id.
func LookupDataset(id SourceID) (Dataset, error) {
	for _, d := range datasets {
		if d.ID == id {
			return d.Clone(), nil
		}
	}
	return Dataset{}, Errorf(ENOTFOUND, "unknown dataset %q", id)
}

// ReferenceService looks up rows of loaded reference datasets.
type ReferenceService interface {
	// FindReference returns the dataset rows whose identifier column exactly
	// matches one of values. Returns EINVALID for an unknown identifier and
	// ENOTFOUND when the dataset was not loaded.
	FindReference(ctx context.Context, dataset SourceID, identifier string, values []string) (Table, error)

	// FindRelated returns the rows of a related table whose key column
	// matches the link column of the given dataset rows.
	FindRelated(ctx context.Context, dataset SourceID, related string, rows Table) (Table, error)
}
