package entity

import "strings"

type Keyword struct {
	ID   int64
	Text string
}

// SpecialtyKeywords maps a user's medical specialty to its built-in
// relevance terms.
var SpecialtyKeywords = map[string][]string{
	"Dis":     {"diş", "dental", "ortodonti", "implant", "ağız", "çene", "periodont"},
	"Fizyo":   {"fizik tedavi", "rehabilitasyon", "fizyoterapi", "kas", "eklem", "omurga", "manuel terapi"},
	"Diyet":   {"beslenme", "diyet", "obezite", "kilo", "metabolizma", "vitamin", "protein"},
	"Psiko":   {"psikoloji", "terapi", "anksiyete", "depresyon", "mental", "ruh sağlığı", "stres"},
	"Kardiyo": {"kalp", "kardiyoloji", "damar", "tansiyon", "kolesterol", "ritim", "koroner"},
	"Genel":   {"sağlık", "tıp", "hastane", "tedavi", "ilaç", "hastalık"},
}

const DefaultSpecialty = "Genel"

// RelevanceKeywords merges custom keywords with the specialty's built-in set,
// lower-cased and without blanks or repeats. An unknown specialty contributes
// nothing.
func RelevanceKeywords(custom []*Keyword, specialty string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(kw string) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			return
		}
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}

	for _, k := range custom {
		add(k.Text)
	}
	for _, kw := range SpecialtyKeywords[specialty] {
		add(kw)
	}
	return out
}
