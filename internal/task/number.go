package task

import (
	"regexp"
	"strconv"
	"strings"
)

// numberRe matches dotted-decimal task numbers such as "1.0", "2.10.3".
var numberRe = regexp.MustCompile(`^\d+(\.\d+)*$`)

// ValidNumber reports whether s is a well-formed task number.
func ValidNumber(s string) bool {
	return numberRe.MatchString(s)
}

// CompareNumbers orders task numbers by numeric dotted-segment comparison,
// so "1.10" sorts after "1.9" and before "2.0". Segments that fail to parse
// fall back to string comparison, which keeps the order total even for
// malformed input.
func CompareNumbers(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr != nil || berr != nil {
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
			continue
		}
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}
