package utils

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const ellipsis = " ... "

var sgrSeq = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// TermWidth returns the width of the terminal attached to stderr. $COLUMNS
// wins if set, and 80 is used when there is no terminal at all.
func TermWidth() (int, error) {
	if c := os.Getenv("COLUMNS"); c != "" {
		if n, err := strconv.Atoi(c); err == nil && n > 0 {
			return n, nil
		}
	}
	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 80, nil
	}
	return w, nil
}

// visibleWidth counts runes, ignoring color escape sequences.
func visibleWidth(s string) int {
	return utf8.RuneCountInString(sgrSeq.ReplaceAllString(s, ""))
}

// FitToTermWidth renders prefix followed by text on a single terminal row,
// leaving padding columns free. Text which doesn't fit loses its middle.
func FitToTermWidth(prefix, text, prefixColor, cutColor string, padding int) (string, error) {
	w, err := TermWidth()
	if err != nil {
		return "", err
	}
	return fitLine(Colorize(prefixColor, prefix), text, cutColor, w-padding), nil
}

func fitLine(prefix, text, cutColor string, width int) string {
	r := []rune(strings.Join(strings.Fields(text), " "))
	avail := width - visibleWidth(prefix)
	cut := utf8.RuneCountInString(ellipsis)
	switch {
	case avail <= 0:
		return prefix
	case len(r) <= avail:
		return prefix + string(r)
	case avail <= cut:
		return prefix + string(r[:avail])
	}
	head := (avail - cut) / 2
	tail := avail - cut - head
	return prefix + string(r[:head]) + Colorize(cutColor, ellipsis) + string(r[len(r)-tail:])
}
