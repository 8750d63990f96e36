// Package model defines the documents and records managed by the admin tool.
package model

import "time"

type ProcessName string

// Area is one institution/subject record of a process. Its identity inside a
// process is its position in the area list.
type Area struct {
	Faculdade       string   `json:"faculdade" toml:"faculdade"`
	Area            string   `json:"area" toml:"area"`
	Pontos          []string `json:"pontos" toml:"pontos"`
	PontosSorteados []string `json:"pontosSorteados" toml:"pontos_sorteados"`
}

// NewArea returns the empty area used to seed a fresh draft: one blank ponto slot
// and no drawn values.
func NewArea() Area {
	return Area{
		Pontos:          []string{""},
		PontosSorteados: []string{},
	}
}

// Clone returns a deep copy of a.
func (a Area) Clone() Area {
	c := a
	c.Pontos = cloneStrings(a.Pontos)
	c.PontosSorteados = cloneStrings(a.PontosSorteados)
	return c
}

// CloneAreas deep copies an area list. A nil list becomes an empty one so that
// stored documents always carry an array.
func CloneAreas(areas []Area) []Area {
	out := make([]Area, len(areas))
	for i := range areas {
		out[i] = areas[i].Clone()
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// ProcessDocument is the stored form of a process. ID is the store's internal
// identifier; documents created by this tool use the name as ID.
type ProcessDocument struct {
	ID    string      `json:"-"`
	Name  ProcessName `json:"nome"`
	Areas []Area      `json:"areas"`

	// Hash of the encoded areas, refreshed on every write.
	AreasHash string `json:"-"`

	CreatedDate  time.Time `json:"-"`
	ModifiedDate time.Time `json:"-"`
}

// NewProcessDocument builds the document written when a process is first created.
func NewProcessDocument(name ProcessName) *ProcessDocument {
	now := time.Now().UTC()
	return &ProcessDocument{
		ID:           string(name),
		Name:         name,
		Areas:        []Area{},
		CreatedDate:  now,
		ModifiedDate: now,
	}
}

// PublishedSelection is the singleton snapshot consumed by the draw system.
type PublishedSelection struct {
	ID          string      `json:"id"`
	ProcessName ProcessName `json:"processo"`
	Areas       []Area      `json:"areas"`
	PublishedAt time.Time   `json:"publishedAt"`
}
