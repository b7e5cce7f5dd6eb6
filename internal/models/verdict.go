package models

import "fmt"

// ReasonKind names a single analyzer check that flagged a divergence.
type ReasonKind string

const (
	ReasonDiffStatusCode        ReasonKind = "diff_status_code"
	ReasonDiffContentType       ReasonKind = "diff_content_type"
	ReasonDiffContentLength     ReasonKind = "diff_content_length"
	ReasonDiffHTMLTagsCount     ReasonKind = "diff_html_tags_count"
	ReasonHeaderValueReflection ReasonKind = "header_value_reflection"
	ReasonParamValueReflection  ReasonKind = "param_value_reflection"
	ReasonCookieValueReflection ReasonKind = "cookie_value_reflection"
)

// Reason pairs a check with its human-readable "probe (baseline)" value.
type Reason struct {
	Kind  ReasonKind `json:"reason"`
	Value string     `json:"value"`
}

// Finding is a confirmed hidden parameter with the evidence that exposed it.
type Finding struct {
	URL      string
	Surface  Surface
	Name     string
	Reasons  []Reason
	Response *Response
}

// VerdictKind enumerates the possible outcomes of probing one chunk.
type VerdictKind uint8

const (
	// VerdictDiscard drops the chunk: the response matched the baseline.
	VerdictDiscard VerdictKind = iota
	// VerdictRetry re-queues the chunk after a transport failure.
	VerdictRetry
	// VerdictSplit bisects the chunk: something inside it diverges.
	VerdictSplit
	// VerdictHit confirms the single name carried by the chunk.
	VerdictHit
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictDiscard:
		return "discard"
	case VerdictRetry:
		return "retry"
	case VerdictSplit:
		return "split"
	case VerdictHit:
		return "hit"
	}
	return fmt.Sprintf("verdict(%d)", uint8(k))
}

// Verdict is the closed result type of a probe. Finding is non-nil exactly
// when Kind is VerdictHit.
type Verdict struct {
	Kind    VerdictKind
	Finding *Finding
}

func Discard() Verdict { return Verdict{Kind: VerdictDiscard} }
func Retry() Verdict   { return Verdict{Kind: VerdictRetry} }
func Split() Verdict   { return Verdict{Kind: VerdictSplit} }

func Hit(f *Finding) Verdict {
	return Verdict{Kind: VerdictHit, Finding: f}
}
