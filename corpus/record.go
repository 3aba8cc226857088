// Package corpus implements the canonical record schema and the
// normalization, deduplication, and assembly stages of the corpus pipeline.
//
// Source adapters produce schema-incomplete RawRecords; Normalize coerces
// them into canonical Records, Deduplicate collapses near-duplicate titles
// into one representative per cluster, and Assemble assigns the final dense
// ids. The package is pure: all I/O lives in the table and harvest packages.
package corpus

import (
	"strconv"
	"time"
)

// Schema is the canonical column order of the corpus table. The persisted
// output follows this order exactly, with "fulltext" appended only when
// enrichment ran.
var Schema = []string{
	"id", "date_pub", "type_source", "titre", "lien", "langue",
	"controverse", "secteur", "territoire", "acteurs", "role_acteurs",
	"rapports_pouvoir", "issue", "mots_cles", "extrait_citation",
	"note_analytique", "source_name", "source_type", "source_country",
}

// RawColumns is the subset of Schema that source adapters fill. Raw batch
// tables carry exactly these columns; Normalize materializes the rest.
var RawColumns = []string{
	"date_pub", "type_source", "titre", "lien", "langue",
	"mots_cles", "extrait_citation", "source_name", "source_type",
	"source_country",
}

// DateFormat is the timestamp format used for date_pub in persisted tables.
const DateFormat = time.RFC3339

// RawRecord is a schema-incomplete record as produced by one source adapter.
// It is an unordered key/value bag: any field may be absent, and no invariant
// is enforced until Normalize.
type RawRecord map[string]string

// First returns the value of the first key that is present and non-empty,
// and whether any was found. It replaces attribute-existence probing on
// loosely-shaped source records with an explicit ordered capability check.
func (r RawRecord) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Record is one row of the canonical schema. A zero DatePub means the
// publication date is unknown (failed to parse or absent); such records are
// retained and sort after all dated records. Domain is derived from Lien
// during normalization, used only by deduplication, and never persisted.
type Record struct {
	ID              int
	DatePub         time.Time
	TypeSource      string
	Titre           string
	Lien            string
	Langue          string
	Controverse     string
	Secteur         string
	Territoire      string
	Acteurs         string
	RoleActeurs     string
	RapportsPouvoir string
	Issue           string
	MotsCles        string
	ExtraitCitation string
	NoteAnalytique  string
	SourceName      string
	SourceType      string
	SourceCountry   string
	Fulltext        string

	// Domain is the host[:port] component of Lien, lowercased.
	// Derived, not persisted.
	Domain string
}

// Columns returns the persisted column set: Schema, plus fulltext when
// enrichment was requested.
func Columns(withFulltext bool) []string {
	cols := make([]string, len(Schema), len(Schema)+1)
	copy(cols, Schema)
	if withFulltext {
		cols = append(cols, "fulltext")
	}
	return cols
}

// Row projects the record onto Columns(withFulltext), in order.
func (r *Record) Row(withFulltext bool) []string {
	date := ""
	if !r.DatePub.IsZero() {
		date = r.DatePub.Format(DateFormat)
	}
	row := []string{
		strconv.Itoa(r.ID), date, r.TypeSource, r.Titre, r.Lien, r.Langue,
		r.Controverse, r.Secteur, r.Territoire, r.Acteurs, r.RoleActeurs,
		r.RapportsPouvoir, r.Issue, r.MotsCles, r.ExtraitCitation,
		r.NoteAnalytique, r.SourceName, r.SourceType, r.SourceCountry,
	}
	if withFulltext {
		row = append(row, r.Fulltext)
	}
	return row
}
