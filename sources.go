package xconnector

// generalFields returns the shared general-info allow-list with the
// source's identifier key in fifth position.
func generalFields(primary string) []string {
	return []string{
		"Version", "Status", "Creation Date", "Update Date", primary,
		"Common Name", "Chemical Formula", "Average Molecular Weight",
		"Monoisotopic Molecular Weight", "IUPAC Name", "Traditional Name",
		"CAS Registry Number", "SMILES", "InChI Identifier", "InChI Key",
		"Kingdom", "Super Class", "Class", "Sub Class", "Direct Parent",
		"Molecular Framework", "Role", "State", "Cellular Locations",
		"Biospecimen Locations", "Tissue Locations", "DrugBank ID",
		"FoodDB ID", "Chemspider ID", "KEGG Compound ID", "ChEBI ID",
		"PubChem Compound",
	}
}

var (
	synonymColumns   = []string{"Value", "Source"}
	expPropColumns   = []string{"Property", "Value", "Reference"}
	predPropColumns  = []string{"Property", "Value", "Source"}
	spectrumColumns  = []string{"Spectrum Type", "Description", "Splash Key"}
	humanConcColumns = []string{"Biospecimen", "Status", "Value", "Age", "Sex", "Condition"}
	stockConcColumns = []string{"Biofluid", "Status", "Value", "Condition", "Species", "Pubmed"}
	referenceRename  = map[string]string{"Reference": "Pubmed"}
	tandemDrop       = []string{"Spectral Display Tools", "Structure"}
)

var (
	hmdbStatus      = []string{"quantified", "detected", "expected", "predicted"}
	hmdbBiospecimen = []string{
		"blood", "saliva", "urine", "csf", "feces", "sweat",
		"breast_milk", "bile", "amniotic_fluid", "other_fluids",
	}
	chemStatus   = []string{"quantified", "detected", "expected"}
	lmdbStatus   = chemStatus
	lmdbBiofluid = []string{"other_fluids", "urine", "milk", "plasma", "serum", "feces", "ruminal_fluid"}
	lmdbSpecies  = []string{"bovine", "ovine", "caprine", "equine", "porcine"}
	t3dbCategory = []string{
		"airborne_pollutant", "animal_toxin", "bacterial_toxin", "cigarette_toxin",
		"drug", "food_toxin", "household_toxin", "industrial_workplace_toxin",
		"natural_toxin", "pesticide", "plant_toxin", "pollutant",
		"polychlorinated_biphenyl", "protein", "synthetic_toxin", "uremic_toxin",
	}
	ymdbStrain = []string{"bakers_yeast", "brewers_yeast"}
	ymdbStatus = []string{"compound_quantified", "compound_expected"}
)

var registry = []Source{
	{
		ID:           SourceHMDB,
		Name:         "Human Metabolome Database",
		BaseURL:      "https://hmdb.ca",
		DetailPath:   "/metabolites/",
		IDPattern:    IDPattern{Prefix: "HMDB", Digits: 7},
		PrimaryField: "HMDB ID",
		Sections: []SectionSpec{
			{Name: "synonyms", Heading: "Synonyms", Index: 1, Columns: synonymColumns},
			{Name: "experimental", Heading: "Experimental Properties", Index: 2, Columns: expPropColumns},
			{Name: "predicted", Heading: "Predicted Properties", Index: 3, Columns: predPropColumns},
			{Name: "spectra", Heading: "Spectra", Index: 4, Columns: spectrumColumns, MaxColumns: 3},
			{Name: "pathways", Heading: "Pathways", Index: 5, Collapse: true, Sentinel: NotAValue},
			{Name: "normal-concentrations", Heading: "Normal Concentrations", Index: 6, Columns: humanConcColumns, MaxColumns: 6, Rename: referenceRename},
			{Name: "abnormal-concentrations", Heading: "Abnormal Concentrations", Index: 7, Columns: humanConcColumns, MaxColumns: 6, Rename: referenceRename},
		},
		Browsers: []Browser{
			{
				Name: "diseases",
				Path: "/diseases",
				Categories: []Category{
					{Name: "status", Values: hmdbStatus},
					{Name: "biospecimen", Values: hmdbBiospecimen},
				},
				Lists:          []string{"metabolite", "disease"},
				Switches:       []string{"inborn_error"},
				LabelByHeading: true,
			},
			{
				Name: "biofluids",
				Path: "/biofluids",
				Categories: []Category{
					{Name: "status", Values: hmdbStatus},
					{Name: "biospecimen", Values: hmdbBiospecimen},
				},
				Lists:          []string{"metabolite", "disease"},
				LabelByHeading: true,
			},
			{
				Name: "classyfication",
				Path: "/classyfication",
				Categories: []Category{
					{Name: "status", Values: hmdbStatus},
					{Name: "biospecimen", Values: hmdbBiospecimen},
				},
				Paginated:   true,
				KeepColumns: 5,
			},
		},
		ChemQuery:  &ChemQuerySpec{Path: "/structures/search/metabolites/mass", Statuses: chemStatus},
		MassSearch: &MassSearchSpec{Path: "/spectra/ms/search", Database: "HMDB"},
		TandemPath: "/spectra/ms_ms/search",
		TextSearch: &TextSearchSpec{
			Path:      "/unearth/q",
			Searchers: []string{"metabolites", "diseases", "pathways", "proteins", "reactions"},
		},
	},
	{
		ID:                SourceLMDB,
		Name:              "Livestock Metabolome Database",
		BaseURL:           "https://lmdb.ca",
		DetailPath:        "/metabolites/",
		StructurePath:     "/structures/%s/image.png",
		IDPattern:         IDPattern{Prefix: "LMDB", Digits: 5},
		PrimaryField:      "Lmdb",
		FullRecordExclude: []string{"Concentrations"},
		Sections: []SectionSpec{
			{Name: "synonyms", Heading: "Synonyms", Index: 1, Columns: synonymColumns},
			{Name: "experimental", Heading: "Experimental Properties", Index: 2, Columns: expPropColumns},
			{Name: "predicted", Heading: "Predicted Properties", Index: 3, Columns: predPropColumns},
			{Name: "spectra", Heading: "Spectra", Index: 4, Columns: spectrumColumns, MaxColumns: 3},
			{Name: "concentrations", Heading: "Concentrations", Index: 5, Columns: stockConcColumns, MaxColumns: 6, Rename: referenceRename},
		},
		Browsers: []Browser{
			{
				Name: "biofluids",
				Path: "/biofluids",
				Categories: []Category{
					{Name: "status", Values: lmdbStatus},
					{Name: "biofluid", Values: lmdbBiofluid},
				},
				Lists:          []string{"metabolite", "disease"},
				Fixed:          map[string]string{"DataTables_Table_0_length": "100"},
				LabelByHeading: true,
			},
			{
				Name: "metabolites",
				Path: "/metabolites",
				Categories: []Category{
					{Name: "biofluid", Values: lmdbBiofluid},
					{Name: "species", Values: lmdbSpecies},
				},
				Paginated: true,
			},
			{
				Name: "classyfication",
				Path: "/classyfication",
				Categories: []Category{
					{Name: "status", Values: lmdbStatus},
					{Name: "biofluid", Values: lmdbBiofluid},
					{Name: "species", Values: lmdbSpecies},
				},
			},
		},
		ChemQuery:  &ChemQuerySpec{Path: "/structures/search/metabolites/mass", Statuses: chemStatus},
		MassSearch: &MassSearchSpec{Path: "/spectra/ms/search", Database: "LMDB"},
		TandemPath: "/spectra/ms_ms/search",
		TextSearch: &TextSearchSpec{Path: "/unearth/q", Searchers: []string{"metabolites"}},
	},
	{
		ID:           SourceT3DB,
		Name:         "Toxin and Toxin Target Database",
		BaseURL:      "https://t3db.ca",
		DetailPath:   "/toxins/",
		IDPattern:    IDPattern{Prefix: "T3D", Digits: 4},
		PrimaryField: "Accession Number",
		Sections: []SectionSpec{
			{Name: "experimental", Heading: "Experimental Properties", Index: 2, Columns: expPropColumns},
			{Name: "predicted", Heading: "Predicted Properties", Index: 3, Columns: predPropColumns},
		},
		Browsers: []Browser{
			{
				Name:        "categories",
				Path:        "/categories",
				Categories:  []Category{{Name: "category", Values: t3dbCategory}},
				Paginated:   true,
				DropColumns: []string{"Structure"},
			},
		},
		ChemQuery:  &ChemQuerySpec{Path: "/structures/search/small_molecules/mass"},
		MassSearch: &MassSearchSpec{Path: "/spectra/ms/search", Database: "HMDB"},
		TandemPath: "/spectra/ms_ms/search",
		TextSearch: &TextSearchSpec{Path: "/unearth/q", Searchers: []string{"compounds"}, Paginated: true},
	},
	{
		ID:            SourceYMDB,
		Name:          "Yeast Metabolome Database",
		BaseURL:       "https://ymdb.ca",
		DetailPath:    "/compounds/",
		StructurePath: "/structures/%s/image.png",
		IDPattern:     IDPattern{Prefix: "YMDB", Digits: 5},
		PrimaryField:  "YMDB ID",
		Sections: []SectionSpec{
			{Name: "experimental", Heading: "Experimental Properties", Index: 1, Columns: expPropColumns},
			{Name: "predicted", Heading: "Predicted Properties", Index: 2, Columns: predPropColumns},
		},
		Browsers: []Browser{
			{
				Name: "compounds",
				Path: "/compounds",
				Categories: []Category{
					{Name: "strain", Values: ymdbStrain},
					{Name: "status", Values: ymdbStatus},
				},
				Lists:         []string{"compound", "protein", "pathway", "reaction"},
				DropColumns:   []string{"Structure"},
				FormulaWeight: "Formula Weight",
			},
		},
		ChemQuery:  &ChemQuerySpec{Path: "/structures/search/compounds/mass"},
		MassSearch: &MassSearchSpec{Path: "/spectra/ms/search", Database: "HMDB"},
		TandemPath: "/spectra/ms_ms/search",
		TextSearch: &TextSearchSpec{Path: "/unearth/q", Searchers: []string{"compounds"}},
	},
	{
		ID:         SourceReSpect,
		Name:       "ReSpect for Phytochemicals",
		BaseURL:    "http://spectra.psc.riken.jp",
		DetailPath: "/menta.cgi/respect/datail/datail?accession=",
	},
}

func init() {
	for i := range registry {
		if registry[i].PrimaryField != "" {
			registry[i].GeneralFields = generalFields(registry[i].PrimaryField)
		}
	}
}

// Sources returns the descriptors of every scraped source.
func Sources() []Source {
	return cloneEach(registry, Source.Clone)
}

// LookupSource returns the descriptor of the source with the given id.
// Returns ENOTFOUND for an unknown id.
func LookupSource(id SourceID) (Source, error) {
	for _, s := range registry {
		if s.ID == id {
			return s.Clone(), nil
		}
	}
	return Source{}, Errorf(ENOTFOUND, "unknown source %q", id)
}
