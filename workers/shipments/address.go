package shipments

import (
	"regexp"
	"strings"
)

var trailingNumber = regexp.MustCompile(`^(.+?)\s+(\d+[\p{L}\p{N}]*)$`)

// SplitAddress separates a trailing house number from a street line. Lines
// without a numeric last token come back whole with an empty number.
func SplitAddress(line string) (street, number string) {
	line = strings.TrimSpace(line)
	if m := trailingNumber.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), m[2]
	}
	return line, ""
}

// NormalizePhone keeps only the ASCII digits of a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidZipcode reports whether zip is a five digit postal code.
func ValidZipcode(zip string) bool {
	zip = strings.TrimSpace(zip)
	if len(zip) != 5 {
		return false
	}
	for _, r := range zip {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidPhone reports whether phone has exactly ten digits once normalised.
func ValidPhone(phone string) bool {
	return len(NormalizePhone(phone)) == 10
}
