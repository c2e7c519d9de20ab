package schemas

import "fmt"

// SelectorKind identifies the strategy used to locate a UI target.
// The UI under test does not expose a single stable identifier for several
// elements (status banners, dynamically rendered buttons), so a logical
// target is described by an ordered list of candidates rather than one
// selector string.
type SelectorKind string

const (
	// SelectorCSS is an exact CSS query (e.g. "#doc-count").
	SelectorCSS SelectorKind = "css"
	// SelectorText matches elements whose visible text contains the value.
	SelectorText SelectorKind = "text"
	// SelectorXPath is a structural XPath expression.
	SelectorXPath SelectorKind = "xpath"
	// SelectorAttr matches on an attribute, value formatted as "name=value".
	SelectorAttr SelectorKind = "attr"
)

// SelectorSpec is a single candidate strategy for locating a target.
// Immutable once constructed; safe to share by reference across calls.
type SelectorSpec struct {
	Kind  SelectorKind `json:"kind"`
	Value string       `json:"value"`
}

// CSS builds an exact-match candidate.
func CSS(query string) SelectorSpec { return SelectorSpec{Kind: SelectorCSS, Value: query} }

// Text builds a pattern-match candidate on visible text.
func Text(fragment string) SelectorSpec { return SelectorSpec{Kind: SelectorText, Value: fragment} }

// XPath builds a structural-path candidate.
func XPath(expr string) SelectorSpec { return SelectorSpec{Kind: SelectorXPath, Value: expr} }

// Attr builds an attribute-match candidate.
func Attr(name, value string) SelectorSpec {
	return SelectorSpec{Kind: SelectorAttr, Value: name + "=" + value}
}

func (s SelectorSpec) String() string {
	return fmt.Sprintf("%s(%s)", s.Kind, s.Value)
}
