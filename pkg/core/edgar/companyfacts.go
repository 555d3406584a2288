package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"filing_analyzer/pkg/core/cache"
	"filing_analyzer/pkg/core/facts"
)

// DefaultTaxonomy is used for aliases written without a "taxonomy:" prefix.
const DefaultTaxonomy = "us-gaap"

// CompanyFacts is the decoded companyfacts document. It implements
// facts.Source.
type CompanyFacts struct {
	CIK        json.Number                       `json:"cik"`
	EntityName string                            `json:"entityName"`
	Taxonomies map[string]map[string]ConceptData `json:"facts"`
}

// ConceptData holds every reported value of one concept, grouped by unit.
type ConceptData struct {
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Units       map[string][]FactEntry `json:"units"`
}

// FactEntry is one raw reported value. FY and FP are null on some entries.
type FactEntry struct {
	Start string  `json:"start,omitempty"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn"`
	FY    *int    `json:"fy"`
	FP    *string `json:"fp"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
	Frame string  `json:"frame,omitempty"`
}

// ParseCompanyFacts decodes a companyfacts JSON document.
func ParseCompanyFacts(data []byte) (*CompanyFacts, error) {
	var cf CompanyFacts
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse company facts: %w", err)
	}
	return &cf, nil
}

// FetchCompanyFacts returns the XBRL facts reported by cik.
func (c *Client) FetchCompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error) {
	cik = PadCIK(cik)
	url := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", c.dataURL, cik)

	var cf CompanyFacts
	if err := c.getJSON(ctx, url, "sec_facts_"+cik, cache.TTLCompanyFacts, &cf); err != nil {
		return nil, fmt.Errorf("company facts for CIK %s: %w", cik, err)
	}
	return &cf, nil
}

// PaddedCIK returns the CIK as a 10 digit string.
func (cf *CompanyFacts) PaddedCIK() string {
	return PadCIK(cf.CIK.String())
}

// Concept looks up a concept, accepting "taxonomy:Name" or a bare name.
func (cf *CompanyFacts) Concept(name string) (ConceptData, bool) {
	if cf == nil {
		return ConceptData{}, false
	}
	taxonomy, concept := splitConcept(name)
	data, ok := cf.Taxonomies[taxonomy][concept]
	return data, ok
}

// ConceptNames lists the concepts of a taxonomy in sorted order.
func (cf *CompanyFacts) ConceptNames(taxonomy string) []string {
	if cf == nil {
		return nil
	}
	names := make([]string, 0, len(cf.Taxonomies[taxonomy]))
	for name := range cf.Taxonomies[taxonomy] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Facts converts the raw entries of concept under unit. Entries with an
// unparseable end or filed date are skipped.
func (cf *CompanyFacts) Facts(concept string, unit facts.Unit) []facts.Fact {
	data, ok := cf.Concept(concept)
	if !ok {
		return nil
	}
	entries := data.Units[string(unit)]
	if len(entries) == 0 {
		return nil
	}

	_, name := splitConcept(concept)
	out := make([]facts.Fact, 0, len(entries))
	for _, e := range entries {
		f, ok := e.toFact(name)
		if ok {
			out = append(out, f)
		}
	}
	return out
}

func (e FactEntry) toFact(concept string) (facts.Fact, bool) {
	end, err := time.Parse(facts.DateLayout, e.End)
	if err != nil {
		return facts.Fact{}, false
	}
	filed, err := time.Parse(facts.DateLayout, e.Filed)
	if err != nil {
		return facts.Fact{}, false
	}

	f := facts.Fact{
		Concept:   concept,
		PeriodEnd: end,
		Value:     e.Val,
		Accession: e.Accn,
		Form:      facts.ParseForm(e.Form),
		RawForm:   e.Form,
		Filed:     filed,
	}
	if e.Start != "" {
		if start, err := time.Parse(facts.DateLayout, e.Start); err == nil {
			f.PeriodStart = start
		}
	}
	if e.FY != nil {
		f.FiscalYear = *e.FY
	}
	if e.FP != nil {
		f.FiscalPeriod = facts.FiscalPeriod(*e.FP)
	}
	return f, true
}

func splitConcept(name string) (taxonomy, concept string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return DefaultTaxonomy, name
}
