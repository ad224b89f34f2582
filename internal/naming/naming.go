// Package naming holds the deterministic string transforms used to derive
// class, module, artifact and file names from an API client name.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || unicode.IsSpace(r)
}

// Camelize removes '-', '_' and whitespace runs, upper-casing the character
// that follows each run. The first character keeps its case.
func Camelize(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for _, r := range s {
		if isSeparator(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Capitalize upper-cases the first character.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Decapitalize lower-cases the first character.
func Decapitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// Classify turns any name into a class-style identifier: "my_api client" -> "MyApiClient".
func Classify(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, s)
	camel := Camelize(mapped)
	camel = strings.Join(strings.Fields(camel), "")
	return Capitalize(camel)
}

// Dasherize lower-cases a name and separates words with '-': "myApi_client" -> "my-api-client".
// A leading capital yields a leading dash; callers usually Decapitalize first.
func Dasherize(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	inSep := false
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			if !inSep {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			inSep = false
			continue
		}
		if isSeparator(r) {
			if !inSep {
				b.WriteByte('-')
				inSep = true
			}
			continue
		}
		inSep = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// FileName is the front-end module file stem for a client name.
func FileName(name string) string {
	return Dasherize(Decapitalize(name))
}
