package extract

import "context"

// SourceKind declares how a raw source should be interpreted.
type SourceKind string

const (
	// KindTabular marks delimited or spreadsheet files (CSV/XLSX).
	KindTabular SourceKind = "tabular"
	// KindText marks text-bearing documents (extracted PDF text, plain text).
	KindText SourceKind = "text"
	// KindImage marks photographed invoices and rasterized scan pages.
	KindImage SourceKind = "image"
)

// RawSource is one uploaded attachment awaiting extraction. It is
// consumed exactly once by an Extractor and never stored.
type RawSource struct {
	Name string
	Kind SourceKind
	Data []byte
}

// CandidateRow is an unvalidated monthly usage record produced by
// extraction. YearMonth is "YYYY-MM" or empty when the period could not
// be read; such rows are rejected during normalization, not here.
type CandidateRow struct {
	YearMonth string   `json:"year_month"`
	KWh       float64  `json:"kwh"`
	Cost      float64  `json:"cost"`
	DemandKW  *float64 `json:"demand_kw"`
	Currency  *string  `json:"currency"`
}

// Result carries the rows extracted from one source plus any non-fatal
// warnings raised along the way. A source that yields nothing is not an
// error; multi-month sources yield several rows.
type Result struct {
	Rows     []CandidateRow
	Warnings []string
}

// Extractor turns one raw source into candidate rows.
type Extractor interface {
	Extract(ctx context.Context, src RawSource) (Result, error)
}

// RowRequest is one call to the external row-extraction service.
// Exactly one of Text or ImagePNG is set.
type RowRequest struct {
	Prompt   string
	Text     string
	ImagePNG []byte
}

// RowService converts invoice content into candidate rows. The service
// is contracted to answer with a JSON object holding a "rows" array;
// raw is the unparsed response body, preserved so a contract violation
// can be inspected after the retry budget is exhausted.
type RowService interface {
	Rows(ctx context.Context, req RowRequest) (rows []CandidateRow, raw string, err error)
}
