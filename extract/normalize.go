package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errInvalidNumber = errors.New("invalid numeric token")

// spaceReplacer drops regular spaces and the non-breaking variants that
// bank pages use as thousands grouping
var spaceReplacer = strings.NewReplacer(
	" ", "",
	"\t", "",
	" ", "", // NBSP
	" ", "", // narrow NBSP
)

// Normalize converts a locale-formatted numeric token into a canonical
// float value. The single locale assumption shared by all supported
// sources is comma-as-decimal:
//
//	"10,95"     -> 10.95
//	"1.234,56"  -> 1234.56
//	"10 950,25" -> 10950.25
//
// Tokens that already use a plain dot decimal pass through unchanged.
// Anything that doesn't parse after normalization is an error
func Normalize(token string) (float64, error) {
	s := spaceReplacer.Replace(strings.TrimSpace(token))
	if s == "" {
		return 0, errInvalidNumber
	}

	if strings.Contains(s, ",") {
		// Dots are thousands grouping when a comma decimal is present
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidNumber, token)
	}

	return f, nil
}
