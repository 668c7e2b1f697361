package shared

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCode renders a code in its wire form: zero-padded decimal, fixed width.
func FormatCode(code int) string {
	return fmt.Sprintf("%0*d", CodeWidth, code)
}

// ParseCode accepts either the integer or the zero-padded string form.
func ParseCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid code %q", s)
	}
	if code < CodeMin || code > CodeMax {
		return 0, fmt.Errorf("code %d out of range", code)
	}
	return code, nil
}
