package exporter

import (
	"math"
	"strings"
	"unicode"

	"museumreport/pkg/contracts/domain"
)

// spreadsheetValue converts a cell to the type excelize stores natively.
// Integral literals become int64 and other numbers float64, so they stay
// numeric in the workbook. Nil leaves the cell blank.
func spreadsheetValue(v domain.Value) interface{} {
	switch v.Kind() {
	case domain.KindNull:
		return nil
	case domain.KindBool:
		b, _ := v.AsBool()
		return b
	case domain.KindNumber:
		if i, ok := v.AsInt(); ok {
			return i
		}
		if f, ok := v.AsFloat(); ok && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
		return v.Text()
	default:
		return v.Text()
	}
}

// xmlType names the type of a non-string cell for the XML type attribute
func xmlType(v domain.Value) string {
	switch v.Kind() {
	case domain.KindString, domain.KindNull:
		return ""
	case domain.KindNumber:
		if _, ok := v.AsInt(); ok {
			return "integer"
		}
		return "number"
	default:
		return v.Kind().String()
	}
}

// xmlName turns a column name into a valid XML element name by replacing
// disallowed runes with underscores
func xmlName(column string) string {
	var b strings.Builder
	for _, r := range column {
		if !(r == '_' || r == '-' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			r = '_'
		}
		b.WriteRune(r)
	}

	name := b.String()
	if first := []rune(name); len(first) == 0 || !(first[0] == '_' || unicode.IsLetter(first[0])) {
		name = "_" + name
	}
	// names starting with "xml" are reserved
	if strings.HasPrefix(strings.ToLower(name), "xml") {
		name = "_" + name
	}
	return name
}

// isNumeric reports whether a cell should be right aligned in HTML
func isNumeric(v domain.Value) bool {
	return v.Kind() == domain.KindNumber
}
