package pdb

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Query defaults.
const (
	DefaultMinResolution      = "0.1"
	DefaultMaxResolution      = "3.0"
	DefaultExperimentalMethod = "X-RAY"

	Yes = "Y"
	No  = "N"
)

// Query describes a composite structure search. Empty fields fall back to
// their defaults.
type Query struct {
	MinResolution string
	MaxResolution string
	// MinDate and MaxDate limit the release date, formatted as YYYY-MM-DD.
	MinDate string
	MaxDate string

	Keywords      []string
	Authors       []string
	PDBIDs        []string
	TitleContains []string

	// ContainsRNA and the other chain type fields are "Y" or "N".
	ContainsRNA     string
	ContainsProtein string
	ContainsDNA     string
	ContainsHybrid  string

	ExperimentalMethod string
}

// NewQuery returns a query with all defaults set.
func NewQuery() *Query {
	q := &Query{}
	q.applyDefaults()
	return q
}

func (q *Query) applyDefaults() {
	setDefault(&q.MinResolution, DefaultMinResolution)
	setDefault(&q.MaxResolution, DefaultMaxResolution)
	setDefault(&q.ContainsRNA, Yes)
	setDefault(&q.ContainsProtein, Yes)
	setDefault(&q.ContainsDNA, No)
	setDefault(&q.ContainsHybrid, No)
	setDefault(&q.ExperimentalMethod, DefaultExperimentalMethod)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

type queryBuilder struct {
	sb    strings.Builder
	level int
}

// refinement wraps one query in a numbered refinement. All but the first
// refinement are joined with "and".
func (b *queryBuilder) refinement(queryType, description string, fields ...string) {
	b.sb.WriteString("<queryRefinement><queryRefinementLevel>")
	b.sb.WriteString(strconv.Itoa(b.level))
	b.sb.WriteString("</queryRefinementLevel>")
	if b.level > 0 {
		b.sb.WriteString("<conjunctionType>and</conjunctionType>")
	}

	b.sb.WriteString("<orgPdbQuery><version>head</version><queryType>")
	b.sb.WriteString(queryType)
	b.sb.WriteString("</queryType><description>")
	b.text(description)
	b.sb.WriteString("</description>")
	for i := 0; i+1 < len(fields); i += 2 {
		b.element(fields[i], fields[i+1])
	}
	b.sb.WriteString("</orgPdbQuery></queryRefinement>")

	b.level++
}

func (b *queryBuilder) element(name, value string) {
	b.sb.WriteString("<" + name + ">")
	b.text(value)
	b.sb.WriteString("</" + name + ">")
}

func (b *queryBuilder) text(s string) {
	_ = xml.EscapeText(&b.sb, []byte(s)) // strings.Builder does not fail
}

// XML returns the composite query document.
func (q Query) XML() string {
	q.applyDefaults()

	b := &queryBuilder{}
	b.sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><orgPdbCompositeQuery version="1.0">`)

	if q.ExperimentalMethod == DefaultExperimentalMethod {
		b.refinement("org.pdb.query.simple.ResolutionQuery", "Resolution query",
			"refine.ls_d_res_high.comparator", "between",
			"refine.ls_d_res_high.min", q.MinResolution,
			"refine.ls_d_res_high.max", q.MaxResolution,
		)
	}

	if q.MinDate != "" || q.MaxDate != "" {
		fields := []string{"refine.ls_d_res_high.comparator", "between"}
		if q.MinDate != "" {
			fields = append(fields, "database_PDB_rev.date.min", q.MinDate)
		}
		if q.MaxDate != "" {
			fields = append(fields, "database_PDB_rev.date.max", q.MaxDate)
		}
		b.refinement("org.pdb.query.simple.ReleaseDateQuery", "Release Date query", fields...)
	}

	for _, title := range q.TitleContains {
		b.refinement("org.pdb.query.simple.StructTitleQuery",
			"StructTitleQuery: struct.title.comparator=contains struct.title.value="+title,
			"struct.title.comparator", "contains",
			"struct.title.value", title,
		)
	}

	if len(q.Keywords) > 0 {
		keywords := strings.Join(q.Keywords, " ")
		b.refinement("org.pdb.query.simple.AdvancedKeywordQuery", "Text Search for: "+keywords,
			"keywords", keywords,
		)
	}

	if len(q.PDBIDs) > 0 {
		ids := strings.Join(q.PDBIDs, ", ")
		b.refinement("org.pdb.query.simple.StructureIdQuery",
			"Simple query for a list of PDB IDs ("+strconv.Itoa(len(q.PDBIDs))+" IDs) :"+ids,
			"structureIdList", ids,
		)
	}

	b.refinement("org.pdb.query.simple.ExpTypeQuery", "Experimental Method is "+q.ExperimentalMethod,
		"mvStructure.expMethod.value", q.ExperimentalMethod,
	)

	for _, author := range q.Authors {
		b.refinement("org.pdb.query.simple.AdvancedAuthorQuery",
			"Author Search: Author Search: audit_author.name="+author+" OR (citation_author.name="+author+" AND citation_author.citation_id=primary)",
			"exactMatch", "false",
			"audit_author.name", author,
		)
	}

	// chain type is always last
	b.refinement("org.pdb.query.simple.ChainTypeQuery", "Chain Type",
		"contains_protein", q.ContainsProtein,
		"contains_dna", q.ContainsDNA,
		"contains_rna", q.ContainsRNA,
		"contains_hybrid", q.ContainsHybrid,
	)

	b.sb.WriteString("</orgPdbCompositeQuery>")
	return b.sb.String()
}
