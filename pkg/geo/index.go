// Package geo provides the static lookup from material names to known
// geographic origins used to place origin pins on a map.
package geo

import (
	_ "embed"
	"os"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

//go:embed origins.yaml
var originsYAML []byte

// Origin is one known source location of a material
type Origin struct {
	Place       string  `yaml:"place" json:"place"`
	Lat         float64 `yaml:"lat" json:"lat"`
	Lng         float64 `yaml:"lng" json:"lng"`
	Description string  `yaml:"description" json:"description"`
}

// Matches reports whether a place mentioned in evidence fuzzy-matches this origin.
// Either the origin place contains the mentioned place, or the mentioned place
// contains the origin's leading segment (text before the first comma).
// Comparison is case-insensitive.
func (o Origin) Matches(place string) bool {
	originPlace := strings.ToLower(o.Place)
	mentioned := strings.ToLower(place)
	head, _, _ := strings.Cut(originPlace, ",")

	return strings.Contains(originPlace, mentioned) || strings.Contains(mentioned, head)
}

type entry struct {
	Material string   `yaml:"material"`
	Origins  []Origin `yaml:"origins"`
}

// Index is an immutable material -> origins table. Safe for concurrent reads.
type Index struct {
	entries []entry
	exact   map[string]int
}

// Parse builds an Index from YAML. Table order is kept for substring lookups.
func Parse(data []byte) (*Index, error) {
	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, goerr.Wrap(err, "failed to parse origin table")
	}

	idx := &Index{
		entries: make([]entry, 0, len(entries)),
		exact:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Material == "" {
			return nil, goerr.New("material name is empty in origin table")
		}
		if _, ok := idx.exact[e.Material]; ok {
			return nil, goerr.New("duplicated material in origin table", goerr.V("material", e.Material))
		}
		idx.exact[e.Material] = len(idx.entries)
		idx.entries = append(idx.entries, e)
	}

	return idx, nil
}

// Load reads an origin table from a YAML file
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read origin table", goerr.V("path", path))
	}
	idx, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid origin table", goerr.V("path", path))
	}
	return idx, nil
}

var defaultIndex = sync.OnceValue(func() *Index {
	idx, err := Parse(originsYAML)
	if err != nil {
		panic(err)
	}
	return idx
})

// Default returns the built-in origin table
func Default() *Index {
	return defaultIndex()
}

// Lookup returns the known origins of a material. Matching order:
// exact key, case-insensitive key, then case-insensitive substring in either direction.
// Returns nil when nothing matches or material is empty.
func (x *Index) Lookup(material string) []Origin {
	if material == "" {
		return nil
	}
	if i, ok := x.exact[material]; ok {
		return x.entries[i].Origins
	}

	normalized := strings.ToLower(material)
	for _, e := range x.entries {
		if strings.ToLower(e.Material) == normalized {
			return e.Origins
		}
	}

	for _, e := range x.entries {
		key := strings.ToLower(e.Material)
		if strings.Contains(key, normalized) || strings.Contains(normalized, key) {
			return e.Origins
		}
	}

	return nil
}

// Materials lists all material names in table order
func (x *Index) Materials() []string {
	names := make([]string, 0, len(x.entries))
	for _, e := range x.entries {
		names = append(names, e.Material)
	}
	return names
}
