package coalition

import (
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// ReferenceData is the configuration-like input to scoring: ideology maps,
// party lineage and the unrealistic-pair list. It is loaded once and never
// mutated afterwards.
type ReferenceData struct {
	Name             string
	Description      string
	Spaces           []IdeologySpace
	Lineage          Lineage
	UnrealisticPairs UnrealisticPairs
	// UseTopics records whether the profile was calibrated with the topic
	// divergence term.
	UseTopics bool
}

// Validate checks the ideology spaces and the pair list.
func (r ReferenceData) Validate() error {
	if _, err := NewIdeologyModel(r.Spaces...); err != nil {
		return errors.Wrap(err, errors.CodeReferenceInvalid, "reference "+r.Name)
	}
	for _, pair := range r.UnrealisticPairs {
		if pair[0] == "" || pair[1] == "" {
			return errors.Newf(errors.CodeReferenceInvalid, "reference %s: unrealistic pair with empty party", r.Name)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// YAML representation
// ─────────────────────────────────────────────────────────────────────────────

type referenceFile struct {
	Name             string              `yaml:"name"`
	Description      string              `yaml:"description"`
	UseTopics        bool                `yaml:"use_topics"`
	Ideology         []IdeologySpace     `yaml:"ideology"`
	Lineage          map[string][]string `yaml:"lineage"`
	UnrealisticPairs [][]string          `yaml:"unrealistic_pairs"`
}

// LoadReferenceData decodes a YAML reference document:
//
//	name: custom
//	ideology:
//	  - name: left_right
//	    weight: 1
//	    dimensions: 1
//	    coordinates: {SP: [-5], VVD: [3]}
//	lineage:
//	  GL/PvdA: [GL, PvdA]
//	unrealistic_pairs:
//	  - [PVV, DENK]
func LoadReferenceData(r io.Reader) (ReferenceData, error) {
	var doc referenceFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return ReferenceData{}, errors.Wrap(err, errors.CodeReferenceInvalid, "decode reference yaml")
	}

	ref := ReferenceData{
		Name:        doc.Name,
		Description: doc.Description,
		UseTopics:   doc.UseTopics,
		Spaces:      doc.Ideology,
		Lineage:     Lineage{},
	}
	if ref.Name == "" {
		ref.Name = "custom"
	}
	for p, preds := range doc.Lineage {
		ref.Lineage[p] = append([]PartyID(nil), preds...)
	}
	for i, pair := range doc.UnrealisticPairs {
		if len(pair) != 2 {
			return ReferenceData{}, errors.Newf(errors.CodeReferenceInvalid,
				"unrealistic_pairs[%d] has %d parties, want 2", i, len(pair))
		}
		ref.UnrealisticPairs = append(ref.UnrealisticPairs, PartyPair{pair[0], pair[1]})
	}
	if err := ref.Validate(); err != nil {
		return ReferenceData{}, err
	}
	return ref, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Built-in profiles
// ─────────────────────────────────────────────────────────────────────────────

// Profile names.
const (
	ProfileTK2023 = "tk2023"
	ProfileEK     = "ek"
)

var profiles = map[string]func() ReferenceData{
	ProfileTK2023: tk2023Profile,
	ProfileEK:     ekProfile,
}

// ProfileNames lists the built-in reference profiles.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Profile returns a fresh copy of a built-in reference profile.
func Profile(name string) (ReferenceData, error) {
	build, ok := profiles[name]
	if !ok {
		return ReferenceData{}, errors.Newf(errors.CodeProfileUnknown, "unknown reference profile %q", name)
	}
	return build(), nil
}

func dutchLineage() Lineage {
	return Lineage{
		"GL/PvdA": {"GL", "PvdA"},
		"NSC":     {"CDA"},
		"JA21":    {"FvD"},
	}
}

func ekPairs() UnrealisticPairs {
	return UnrealisticPairs{
		{"FvD", "Volt"},
		{"PVV", "BIJ1"},
		{"SGP", "BIJ1"},
		{"FvD", "D66"},
		{"PVV", "GL/PvdA"},
		{"PVV", "DENK"},
		{"PVV", "Volt"},
		{"SGP", "Volt"},
		{"GL/PvdA", "BBB"},
		{"PVV", "D66"},
	}
}

// tk2023Profile positions parties on the Kieskompas 2D compass and a 4D
// expanded space, weighted equally, and scores topic divergence.
func tk2023Profile() ReferenceData {
	return ReferenceData{
		Name:        ProfileTK2023,
		Description: "2023 lower-chamber model: Kieskompas 2D + expanded 4D, topic divergence",
		UseTopics:   true,
		Spaces: []IdeologySpace{
			{
				Name:       "kieskompas_2d",
				Weight:     0.5,
				Dimensions: 2,
				Coordinates: map[PartyID][]float64{
					"BIJ1":    {-5.0, 5.0},
					"PvdD":    {-5.0, 4.5},
					"GL/PvdA": {-2.8, 3.3},
					"DENK":    {-3.4, 1.5},
					"SP":      {-3.8, 1.0},
					"Volt":    {-0.7, 4.6},
					"D66":     {-0.3, 2.7},
					"CU":      {-1.7, 1.0},
					"50PLUS":  {-1.2, -0.2},
					"NSC":     {-0.5, -0.4},
					"CDA":     {1.2, -1.2},
					"SGP":     {1.3, -2.1},
					"BBB":     {0.5, -2.1},
					"VVD":     {2.5, -1.5},
					"PVV":     {0.5, -3.7},
					"FvD":     {3.2, -5.0},
					"JA21":    {3.8, -4.8},
					"BVNL":    {5.0, -4.8},
				},
			},
			{
				// economic, cultural, globalist/nationalist, libertarian/authoritarian
				Name:       "expanded_4d",
				Weight:     0.5,
				Dimensions: 4,
				Coordinates: map[PartyID][]float64{
					"50PLUS":  {-0.43, 0.61, 0.36, -0.61},
					"BBB":     {-0.23, 0.65, 0.62, -0.25},
					"BIJ1":    {-0.1, 0.41, 0.73, -0.2},
					"CDA":     {-0.38, 0.66, 0.68, -0.25},
					"CU":      {-0.36, 0.7, 0.66, -0.27},
					"D66":     {-0.4, 0.63, 0.65, -0.29},
					"DENK":    {-0.17, 0.37, 0.72, -0.35},
					"FvD":     {-0.2, 0.39, 0.64, -0.37},
					"GL/PvdA": {-0.39, 0.65, 0.56, -0.3},
					"JA21":    {-0.21, 0.52, 0.64, -0.22},
					"NSC":     {-0.47, 0.68, 0.64, -0.33},
					"PVV":     {-0.27, 0.49, 0.57, -0.25},
					"PvdD":    {-0.34, 0.83, 0.5, -0.29},
					"SGP":     {-0.39, 0.54, 0.73, -0.23},
					"SP":      {-0.44, 0.56, 0.52, -0.37},
					"VVD":     {-0.33, 0.72, 0.63, -0.22},
					"Volt":    {-0.36, 0.66, 0.62, -0.38},
				},
			},
		},
		Lineage:          dutchLineage(),
		UnrealisticPairs: append(ekPairs(), PartyPair{"PVV", "CDA"}, PartyPair{"GL/PvdA", "SGP"}),
	}
}

// ekProfile is the upper-chamber study model with a single left/right axis
// from -5 (far left) to +5 (far right) and no topic term.
func ekProfile() ReferenceData {
	return ReferenceData{
		Name:        ProfileEK,
		Description: "upper-chamber model: single left/right axis, no topic divergence",
		Spaces: []IdeologySpace{{
			Name:       "left_right",
			Weight:     1.0,
			Dimensions: 1,
			Coordinates: map[PartyID][]float64{
				"SP":                    {-5},
				"PvdA":                  {-3},
				"GL":                    {-3},
				"PvdD":                  {-2},
				"D66":                   {-1},
				"Volt":                  {-1},
				"CDA":                   {1},
				"CU":                    {1},
				"SGP":                   {2},
				"VVD":                   {3},
				"JA21":                  {4},
				"PVV":                   {5},
				"BBB":                   {2},
				"Forum voor Democratie": {5},
				"DENK":                  {-4},
				"50PLUS":                {0},
				"BIJ1":                  {-5},
				"LP":                    {3},
				"NSC":                   {1},
			},
		}},
		Lineage:          dutchLineage(),
		UnrealisticPairs: ekPairs(),
	}
}
