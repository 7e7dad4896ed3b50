package domain

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxCodeSlugLen = 24

// DeriveCode builds a promotion code from the name and a time-based suffix,
// e.g. "Été -20% stylos" becomes "ETE-20-STYLOS-" plus the base36 unix millis.
func DeriveCode(name string, at time.Time) string {
	slug := slugify(name)
	if slug == "" {
		slug = "PROMO"
	}
	suffix := strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
	return slug + "-" + suffix
}

func slugify(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToUpper(folded) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
		if b.Len() >= maxCodeSlugLen {
			break
		}
	}

	return strings.Trim(b.String(), "-")
}
