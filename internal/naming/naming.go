// Package naming turns free-form API names into identifiers for generated sources.
package naming

import (
	"strings"
	"unicode"
)

// SanitizeLeadingDigit prefixes names that start with a digit with "Num"
// to keep identifiers valid in target languages.
func SanitizeLeadingDigit(name string) string {
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "Num" + name
	}
	return name
}

// Identifier replaces every character that cannot appear in a Java or Go identifier
// with '_' and sanitizes a leading digit.
// Example: "first-name" => "first_name", "2fa" => "Num2fa".
func Identifier(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return SanitizeLeadingDigit(b.String())
}

// words splits s at every non alphanumeric rune and at lower-to-upper case changes.
func words(s string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}

// Pascal joins the words of s with each word capitalized: "create order" => "CreateOrder".
func Pascal(s string) string { return SanitizeLeadingDigit(capitalize(words(s))) }

func capitalize(ws []string) string {
	var b strings.Builder
	for _, w := range ws {
		rs := []rune(w)
		b.WriteRune(unicode.ToUpper(rs[0]))
		b.WriteString(string(rs[1:]))
	}
	return b.String()
}

// Camel is Pascal with the first word in lower case: "POST /orders/{id}" => "postOrdersId".
func Camel(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}
	first := ws[0]
	if strings.ToUpper(first) == first {
		first = strings.ToLower(first)
	} else {
		rs := []rune(first)
		rs[0] = unicode.ToLower(rs[0])
		first = string(rs)
	}
	return SanitizeLeadingDigit(first + capitalize(ws[1:]))
}

// PackagePath turns a dotted package name into a slash separated path.
func PackagePath(pkg string) string { return strings.ReplaceAll(pkg, ".", "/") }
