// Package cldf validates a negex.Dataset and writes it as a CLDF
// StructureDataset: CSVW metadata, one CSV per component and sources.bib.
package cldf

const (
	termsURL     = "http://cldf.clld.org/v1.0/terms.rdf#"
	csvwContext  = "http://www.w3.org/ns/csvw"
	MetadataFile = "StructureDataset-metadata.json"
	SourcesFile  = "sources.bib"

	// ListSeparator joins multi-valued cells (Grammacodes, Source).
	ListSeparator = ";"
)

// Column describes one CSV column and its CLDF property.
type Column struct {
	Name      string
	Property  string
	Datatype  string
	Required  bool
	Separator string
}

// Component is one CLDF table.
type Component struct {
	Type        string
	URL         string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// ForeignKey points a column at the primary key of another component.
type ForeignKey struct {
	Column    string
	Reference string
}

var idColumn = Column{Name: "ID", Property: "id", Datatype: "string", Required: true}

// LanguageTable is languages.csv.
var LanguageTable = Component{
	Type: "LanguageTable",
	URL:  "languages.csv",
	Columns: []Column{
		idColumn,
		{Name: "Name", Property: "name", Datatype: "string"},
		{Name: "Glottocode", Property: "glottocode", Datatype: "string"},
		{Name: "ISO639P3code", Property: "iso639P3code", Datatype: "string"},
		{Name: "Latitude", Property: "latitude", Datatype: "decimal"},
		{Name: "Longitude", Property: "longitude", Datatype: "decimal"},
	},
}

// ParameterTable is parameters.csv.
var ParameterTable = Component{
	Type: "ParameterTable",
	URL:  "parameters.csv",
	Columns: []Column{
		idColumn,
		{Name: "Name", Property: "name", Datatype: "string"},
		{Name: "Description", Property: "description", Datatype: "string"},
		{Name: "Original_Name", Datatype: "string"},
		{Name: "Grammacodes", Datatype: "string", Separator: ListSeparator},
	},
}

// CodeTable is codes.csv.
var CodeTable = Component{
	Type: "CodeTable",
	URL:  "codes.csv",
	Columns: []Column{
		idColumn,
		{Name: "Parameter_ID", Property: "parameterReference", Datatype: "string", Required: true},
		{Name: "Name", Property: "name", Datatype: "string"},
		{Name: "Description", Property: "description", Datatype: "string"},
		{Name: "Original_Name", Datatype: "string"},
		{Name: "Map_Icon", Datatype: "string"},
	},
	ForeignKeys: []ForeignKey{{Column: "Parameter_ID", Reference: "parameters.csv"}},
}

// ValueTable is values.csv.
var ValueTable = Component{
	Type: "ValueTable",
	URL:  "values.csv",
	Columns: []Column{
		idColumn,
		{Name: "Language_ID", Property: "languageReference", Datatype: "string", Required: true},
		{Name: "Parameter_ID", Property: "parameterReference", Datatype: "string", Required: true},
		{Name: "Value", Property: "value", Datatype: "string"},
		{Name: "Code_ID", Property: "codeReference", Datatype: "string"},
		{Name: "Comment", Property: "comment", Datatype: "string"},
		{Name: "Source", Property: "source", Datatype: "string", Separator: ListSeparator},
		{Name: "Source_comment", Datatype: "string"},
	},
	ForeignKeys: []ForeignKey{
		{Column: "Language_ID", Reference: "languages.csv"},
		{Column: "Parameter_ID", Reference: "parameters.csv"},
		{Column: "Code_ID", Reference: "codes.csv"},
	},
}

// Components are written in this order.
var Components = []Component{LanguageTable, ParameterTable, CodeTable, ValueTable}

// Header returns the CSV header row.
func (c Component) Header() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Name
	}
	return out
}
