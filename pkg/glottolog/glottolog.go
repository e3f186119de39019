// Package glottolog maps ISO 639-3 codes to Glottolog languoids using the
// languages_and_dialects_geo.csv export.
package glottolog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/japaniel/veselinovanegex/pkg/raw"
)

// Languoid is the subset of a Glottolog record used to enrich languages.
type Languoid struct {
	Glottocode string
	Name       string
	ISO        string
	Level      string
	Latitude   *float64
	Longitude  *float64
}

// Catalog is an in-memory ISO code index of languoids.
type Catalog struct {
	byISO map[string]Languoid
}

// NewCatalog indexes languoids by ISO code. Languoids without one are ignored;
// for a code shared by several records the first wins.
func NewCatalog(languoids []Languoid) *Catalog {
	c := &Catalog{byISO: make(map[string]Languoid, len(languoids))}
	for _, l := range languoids {
		if l.ISO == "" {
			continue
		}
		if _, dup := c.byISO[l.ISO]; !dup {
			c.byISO[l.ISO] = l
		}
	}
	return c
}

// Languoid returns the languoid with the given ISO 639-3 code.
func (c *Catalog) Languoid(iso string) (Languoid, bool) {
	if c == nil {
		return Languoid{}, false
	}
	l, ok := c.byISO[iso]
	return l, ok
}

// Len is the number of indexed codes.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byISO)
}

// Load reads the Glottolog CSV export.
func Load(path string) (*Catalog, error) {
	t, err := raw.ReadCSV(path)
	if err != nil {
		return nil, err
	}
	languoids, err := FromTable(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewCatalog(languoids), nil
}

// Ensure makes sure the export exists at path, downloading it from url when set.
func Ensure(ctx context.Context, path, url string) error {
	return raw.EnsureFile(ctx, path, url)
}

// FromTable converts the export's rows. A record may list several
// space-separated ISO codes; each gets its own entry.
func FromTable(t *raw.Table) ([]Languoid, error) {
	if err := t.Require("glottocode", "isocodes"); err != nil {
		return nil, err
	}

	var out []Languoid
	for _, rec := range t.Records {
		base := Languoid{
			Glottocode: strings.TrimSpace(t.Value(rec, "glottocode")),
			Name:       strings.TrimSpace(t.Value(rec, "name")),
			Level:      strings.TrimSpace(t.Value(rec, "level")),
			Latitude:   parseCoordinate(t.Value(rec, "latitude")),
			Longitude:  parseCoordinate(t.Value(rec, "longitude")),
		}
		if base.Glottocode == "" {
			continue
		}
		for _, iso := range strings.Fields(t.Value(rec, "isocodes")) {
			l := base
			l.ISO = iso
			out = append(out, l)
		}
	}
	return out, nil
}

func parseCoordinate(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
