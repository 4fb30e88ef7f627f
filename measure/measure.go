// Package measure provides the text metrics used for both planning and
// drawing.
//
// Every height the planner computes comes from Wrap, and the renderer draws
// exactly the lines Wrap returns. Backends supply a Measurer built from the
// same fonts they draw with, so planned and drawn line counts cannot drift.
package measure

import (
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/lvillar/invoicepdf/draw"
)

// ErrUnavailable is returned when no font metrics are loaded.
var ErrUnavailable = errors.New("measure: text metrics unavailable")

// Measurer reports the advance width of a text run in millimetres.
type Measurer interface {
	Width(text string, f draw.Font) (float64, error)
}

// tolerance absorbs floating point noise when a line exactly fills a column.
const tolerance = 1e-9

// Wrap breaks text into lines no wider than maxWidth. Lines break greedily
// on whitespace; explicit newlines always break and words wider than the
// column are split between characters. Blank text yields no lines.
func Wrap(m Measurer, text string, maxWidth float64, f draw.Font) ([]string, error) {
	if m == nil {
		return nil, ErrUnavailable
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			w, err := m.Width(candidate, f)
			if err != nil {
				return nil, err
			}
			if w <= maxWidth+tolerance {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
				line = ""
			}
			ww, err := m.Width(word, f)
			if err != nil {
				return nil, err
			}
			if ww <= maxWidth+tolerance {
				line = word
				continue
			}
			full, rest, err := splitWord(m, word, maxWidth, f)
			if err != nil {
				return nil, err
			}
			lines = append(lines, full...)
			line = rest
		}
		if line != "" {
			lines = append(lines, line)
		}
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// splitWord breaks a single word by characters. Each piece holds at least
// one character so the loop always advances.
func splitWord(m Measurer, word string, maxWidth float64, f draw.Font) (full []string, rest string, err error) {
	cur := ""
	for _, r := range word {
		next := cur + string(r)
		w, err := m.Width(next, f)
		if err != nil {
			return nil, "", err
		}
		if w > maxWidth+tolerance && cur != "" {
			full = append(full, cur)
			next = string(r)
		}
		cur = next
	}
	return full, cur, nil
}

// Lines is len(Wrap(...)).
func Lines(m Measurer, text string, maxWidth float64, f draw.Font) (int, error) {
	lines, err := Wrap(m, text, maxWidth, f)
	return len(lines), err
}

// Fit returns the longest prefix of text, on a character boundary, whose
// width does not exceed maxWidth.
func Fit(m Measurer, text string, maxWidth float64, f draw.Font) (string, error) {
	w, err := m.Width(text, f)
	if err != nil || w <= maxWidth+tolerance {
		return text, err
	}
	lo, hi := 0, utf8.RuneCountInString(text)
	runes := []rune(text)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		w, err := m.Width(string(runes[:mid]), f)
		if err != nil {
			return "", err
		}
		if w <= maxWidth+tolerance {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:lo]), nil
}

type memoKey struct {
	text string
	font draw.Font
}

type memo struct {
	m     Measurer
	cache sync.Map // memoKey -> float64
}

// Memoize caches widths by text and font. Errors are not cached.
func Memoize(m Measurer) Measurer {
	if m == nil {
		return nil
	}
	if _, ok := m.(*memo); ok {
		return m
	}
	return &memo{m: m}
}

func (c *memo) Width(text string, f draw.Font) (float64, error) {
	k := memoKey{text, f}
	if v, ok := c.cache.Load(k); ok {
		return v.(float64), nil
	}
	w, err := c.m.Width(text, f)
	if err != nil {
		return 0, err
	}
	c.cache.Store(k, w)
	return w, nil
}
