package corpus

import "strings"

// Normalize coerces a merged set of RawRecords into canonical Records.
// Every canonical column absent from a raw record materializes as its zero
// value, titre and lien are trimmed (absent means "", not null), date_pub is
// resolved through ParseDate with failures degrading to an unknown date, and
// the dedup domain is derived from lien. Nothing is dropped here: records
// with an empty title survive until FilterTitled.
func Normalize(raws []RawRecord) []Record {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		r := Record{
			TypeSource:      raw["type_source"],
			Titre:           strings.TrimSpace(raw["titre"]),
			Lien:            strings.TrimSpace(raw["lien"]),
			Langue:          raw["langue"],
			Controverse:     raw["controverse"],
			Secteur:         raw["secteur"],
			Territoire:      raw["territoire"],
			Acteurs:         raw["acteurs"],
			RoleActeurs:     raw["role_acteurs"],
			RapportsPouvoir: raw["rapports_pouvoir"],
			Issue:           raw["issue"],
			MotsCles:        raw["mots_cles"],
			ExtraitCitation: raw["extrait_citation"],
			NoteAnalytique:  raw["note_analytique"],
			SourceName:      raw["source_name"],
			SourceType:      raw["source_type"],
			SourceCountry:   raw["source_country"],
		}
		if t, ok := ParseDate(raw["date_pub"]); ok {
			r.DatePub = t
		}
		r.Domain = Domain(r.Lien)
		records = append(records, r)
	}
	return records
}

// FilterTitled drops records whose title is empty after normalization.
// An untitled record is not analyzable and not comparable during dedup.
// Relative order is preserved.
func FilterTitled(records []Record) []Record {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Titre == "" {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
