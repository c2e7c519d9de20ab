// File: internal/browser/queries.go
// Description: Translation from SelectorSpec strategies to chromedp query
// parameters and to DOM lookup JavaScript. Keeping the translation in one
// place lets the rest of the harness stay strategy-agnostic.

package browser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/Oktaliem/ragproof/api/schemas"
)

// toQuery maps a SelectorSpec to a chromedp query string and option.
func toQuery(spec schemas.SelectorSpec) (string, chromedp.QueryOption) {
	switch spec.Kind {
	case schemas.SelectorXPath:
		return spec.Value, chromedp.BySearch
	case schemas.SelectorText:
		return textToXPath(spec.Value), chromedp.BySearch
	case schemas.SelectorAttr:
		return attrToCSS(spec.Value), chromedp.ByQuery
	default:
		return spec.Value, chromedp.ByQuery
	}
}

// textToXPath matches any element whose normalized text contains the
// fragment. Quotes in the fragment are handled via concat().
func textToXPath(fragment string) string {
	return fmt.Sprintf("//*[contains(normalize-space(.), %s)]", xpathLiteral(fragment))
}

// attrToCSS turns "name=value" into the attribute selector [name="value"].
// A bare name matches attribute presence.
func attrToCSS(pair string) string {
	name, value, found := strings.Cut(pair, "=")
	if !found {
		return fmt.Sprintf("[%s]", name)
	}
	return fmt.Sprintf("[%s=%q]", name, value)
}

// xpathLiteral quotes s for embedding in an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	// Mixed quotes require concat().
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}

// lookupJS returns a JavaScript expression evaluating to the first node
// matching the spec, or null.
func lookupJS(spec schemas.SelectorSpec) string {
	switch spec.Kind {
	case schemas.SelectorXPath:
		return xpathLookupJS(spec.Value)
	case schemas.SelectorText:
		return xpathLookupJS(textToXPath(spec.Value))
	case schemas.SelectorAttr:
		return cssLookupJS(attrToCSS(spec.Value))
	default:
		return cssLookupJS(spec.Value)
	}
}

func cssLookupJS(query string) string {
	q, _ := json.Marshal(query)
	return fmt.Sprintf("document.querySelector(%s)", q)
}

func xpathLookupJS(expr string) string {
	x, _ := json.Marshal(expr)
	return fmt.Sprintf(
		"document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", x)
}

// existsJS evaluates to true when a node matching the spec is attached.
func existsJS(spec schemas.SelectorSpec) string {
	return fmt.Sprintf("(%s) !== null", lookupJS(spec))
}

// visibleJS evaluates to true when a matching node is attached and takes up
// layout space with visible styling.
func visibleJS(spec schemas.SelectorSpec) string {
	return fmt.Sprintf(`(() => {
	const el = %s;
	if (!el) return false;
	const style = window.getComputedStyle(el);
	if (style.display === 'none' || style.visibility === 'hidden' || style.opacity === '0') return false;
	const rect = el.getBoundingClientRect();
	return rect.width > 0 && rect.height > 0;
})()`, lookupJS(spec))
}

// textContentJS evaluates to the trimmed text of the first match, or null
// when absent.
func textContentJS(spec schemas.SelectorSpec) string {
	return fmt.Sprintf(`(() => {
	const el = %s;
	return el === null ? null : el.textContent.trim();
})()`, lookupJS(spec))
}
