package cldf

import (
	"encoding/json"
	"os"
)

// Metadata is the descriptive part of the dataset's CSVW metadata.
type Metadata struct {
	ID          string
	Title       string
	Description string
	URL         string
	License     string
	Citation    string
}

type metadataDoc struct {
	Context     []any      `json:"@context"`
	ConformsTo  string     `json:"dc:conformsTo"`
	Source      string     `json:"dc:source"`
	Title       string     `json:"dc:title,omitempty"`
	Description string     `json:"dc:description,omitempty"`
	Identifier  string     `json:"dc:identifier,omitempty"`
	License     string     `json:"dc:license,omitempty"`
	Citation    string     `json:"dc:bibliographicCitation,omitempty"`
	RDFID       string     `json:"rdf:ID,omitempty"`
	RDFType     string     `json:"rdf:type"`
	Tables      []tableDoc `json:"tables"`
}

type tableDoc struct {
	ConformsTo  string    `json:"dc:conformsTo"`
	URL         string    `json:"url"`
	TableSchema schemaDoc `json:"tableSchema"`
}

type schemaDoc struct {
	Columns     []columnDoc     `json:"columns"`
	PrimaryKey  []string        `json:"primaryKey"`
	ForeignKeys []foreignKeyDoc `json:"foreignKeys,omitempty"`
}

type columnDoc struct {
	Name        string `json:"name"`
	Required    bool   `json:"required,omitempty"`
	PropertyURL string `json:"propertyUrl,omitempty"`
	Datatype    string `json:"datatype"`
	Separator   string `json:"separator,omitempty"`
}

type foreignKeyDoc struct {
	ColumnReference []string     `json:"columnReference"`
	Reference       referenceDoc `json:"reference"`
}

type referenceDoc struct {
	Resource        string   `json:"resource"`
	ColumnReference []string `json:"columnReference"`
}

func buildMetadata(m Metadata) metadataDoc {
	doc := metadataDoc{
		Context:     []any{csvwContext, map[string]string{"@language": "en"}},
		ConformsTo:  termsURL + "StructureDataset",
		Source:      SourcesFile,
		Title:       m.Title,
		Description: m.Description,
		Identifier:  m.URL,
		License:     m.License,
		Citation:    m.Citation,
		RDFID:       m.ID,
		RDFType:     "http://www.w3.org/ns/dcat#Distribution",
	}
	for _, c := range Components {
		t := tableDoc{
			ConformsTo: termsURL + c.Type,
			URL:        c.URL,
			TableSchema: schemaDoc{
				PrimaryKey: []string{"ID"},
			},
		}
		for _, col := range c.Columns {
			cd := columnDoc{
				Name:      col.Name,
				Required:  col.Required,
				Datatype:  col.Datatype,
				Separator: col.Separator,
			}
			if col.Property != "" {
				cd.PropertyURL = termsURL + col.Property
			}
			t.TableSchema.Columns = append(t.TableSchema.Columns, cd)
		}
		for _, fk := range c.ForeignKeys {
			t.TableSchema.ForeignKeys = append(t.TableSchema.ForeignKeys, foreignKeyDoc{
				ColumnReference: []string{fk.Column},
				Reference:       referenceDoc{Resource: fk.Reference, ColumnReference: []string{"ID"}},
			})
		}
		doc.Tables = append(doc.Tables, t)
	}
	return doc
}

func writeMetadata(path string, m Metadata) error {
	data, err := json.MarshalIndent(buildMetadata(m), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
