package tickets

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	codePrefixLen = 3
	codeDigits    = 3
	prefixPadding = "X"
)

// NormalizePrefix upper-cases the event prefix, keeps letters and digits,
// and truncates or pads it to three characters.
func NormalizePrefix(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if r > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
		if b.Len() == codePrefixLen {
			break
		}
	}
	prefix := b.String()
	if len(prefix) < codePrefixLen {
		prefix += strings.Repeat(prefixPadding, codePrefixLen-len(prefix))
	}
	return prefix
}

// FormatCode renders PPPNNN. Sequences past 999 widen instead of wrapping.
func FormatCode(prefix string, seq int) string {
	return fmt.Sprintf("%s%0*d", prefix, codeDigits, seq)
}

// codeSuffix parses the numeric part of a code carrying prefix
func codeSuffix(code, prefix string) (int, bool) {
	if !strings.HasPrefix(code, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(code[len(prefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// maxSuffix returns the highest sequence already used by codes with prefix
func maxSuffix(codes []string, prefix string) int {
	max := 0
	for _, c := range codes {
		if n, ok := codeSuffix(c, prefix); ok && n > max {
			max = n
		}
	}
	return max
}

// nextCodes generates quantity sequential codes after the current maximum
func nextCodes(prefix string, currentMax, quantity int) []string {
	codes := make([]string, 0, quantity)
	for i := 1; i <= quantity; i++ {
		codes = append(codes, FormatCode(prefix, currentMax+i))
	}
	return codes
}
