package domain

import "time"

// Report is the raw violation payload a browser posts, nested under the
// "csp-report" key with kebab-case fields. Absent fields decode to their
// zero value; a partial report is still a valid report.
type Report struct {
	DocumentURI        string  `json:"document-uri"`
	Referrer           string  `json:"referrer"`
	ViolatedDirective  string  `json:"violated-directive"`
	EffectiveDirective string  `json:"effective-directive"`
	OriginalPolicy     string  `json:"original-policy"`
	Disposition        string  `json:"disposition"`
	BlockedURI         *string `json:"blocked-uri"`
	LineNumber         *uint32 `json:"line-number"`
	ColumnNumber       *uint32 `json:"column-number"`
	SourceFile         *string `json:"source-file"`
	StatusCode         *uint32 `json:"status-code"`
	ScriptSample       string  `json:"script-sample"`
}

// ReportPayload is the envelope browsers send to the report endpoint.
type ReportPayload struct {
	Report Report `json:"csp-report"`
}

// BufferedReport is a Report stamped at ingestion time. It lives in the
// in-memory buffer until the flush scheduler moves it into the
// analytical store; once written it is never updated or deleted.
type BufferedReport struct {
	Report
	CreatedAt time.Time
	SourceIP  string
}

// StoredReport is the camelCase projection of a persisted violation
// returned by the read endpoints. CreatedAt is the store's textual
// timestamp rendering.
type StoredReport struct {
	DocumentURI        string  `json:"documentUri"`
	CreatedAt          string  `json:"createdAt"`
	Referrer           string  `json:"referrer"`
	ViolatedDirective  string  `json:"violatedDirective"`
	EffectiveDirective string  `json:"effectiveDirective"`
	OriginalPolicy     string  `json:"originalPolicy"`
	Disposition        string  `json:"disposition"`
	BlockedURI         *string `json:"blockedUri"`
	LineNumber         *uint32 `json:"lineNumber"`
	ColumnNumber       *uint32 `json:"columnNumber"`
	SourceFile         *string `json:"sourceFile"`
	StatusCode         *uint32 `json:"statusCode"`
	ScriptSample       string  `json:"scriptSample"`
	SourceIP           string  `json:"sourceIp"`
}

// DistinctReport is one group of identical violations: the seven
// descriptive fields, when the pattern was first seen and how often it
// occurred.
type DistinctReport struct {
	ViolatedDirective  string  `json:"violatedDirective"`
	EffectiveDirective string  `json:"effectiveDirective"`
	OriginalPolicy     string  `json:"originalPolicy"`
	Disposition        string  `json:"disposition"`
	BlockedURI         *string `json:"blockedUri"`
	SourceFile         *string `json:"sourceFile"`
	ScriptSample       string  `json:"scriptSample"`
	FirstSeen          string  `json:"firstSeen"`
	Count              uint64  `json:"cnt"`
}

// ViolationCount holds one calendar day's per-directive-family totals.
// Field names follow CSP directive naming, hence the kebab-case JSON.
type ViolationCount struct {
	Day        string `json:"day"`
	BaseURI    uint64 `json:"base-uri"`
	ScriptSrc  uint64 `json:"script-src"`
	ImgSrc     uint64 `json:"img-src"`
	StyleSrc   uint64 `json:"style-src"`
	ConnectSrc uint64 `json:"connect-src"`
	MediaSrc   uint64 `json:"media-src"`
	ObjectSrc  uint64 `json:"object-src"`
	FrameSrc   uint64 `json:"frame-src"`
	FontSrc    uint64 `json:"font-src"`
}
