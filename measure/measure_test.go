package measure

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/invoicepdf/draw"
)

// runeWidth measures every character as 1mm.
type runeWidth struct {
	mu    sync.Mutex
	calls int
}

func (r *runeWidth) Width(text string, _ draw.Font) (float64, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return float64(utf8.RuneCountInString(text)), nil
}

type failing struct{}

func (failing) Width(string, draw.Font) (float64, error) { return 0, ErrUnavailable }

var body = draw.Font{Size: 9}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{name: "fits", text: "hello world", width: 20, want: []string{"hello world"}},
		{name: "exact", text: "hello world", width: 11, want: []string{"hello world"}},
		{name: "greedy", text: "aa bb cc dd", width: 5, want: []string{"aa bb", "cc dd"}},
		{name: "newline", text: "one\ntwo three", width: 20, want: []string{"one", "two three"}},
		{name: "blank paragraph kept", text: "one\n\ntwo", width: 20, want: []string{"one", "", "two"}},
		{name: "trailing newline dropped", text: "one\n", width: 20, want: []string{"one"}},
		{name: "long word", text: "abcdefghij", width: 4, want: []string{"abcd", "efgh", "ij"}},
		{name: "long word after text", text: "ab abcdefgh x", width: 4, want: []string{"ab", "abcd", "efgh", "x"}},
		{name: "collapses spaces", text: "a    b", width: 10, want: []string{"a b"}},
		{name: "blank", text: "   \n ", width: 10, want: nil},
		{name: "crlf", text: "a\r\nb", width: 10, want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Wrap(&runeWidth{}, tt.text, tt.width, body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			for _, l := range got {
				assert.LessOrEqual(t, float64(utf8.RuneCountInString(l)), tt.width)
			}
		})
	}
}

func TestWrapZeroWidthTerminates(t *testing.T) {
	got, err := Wrap(&runeWidth{}, "abc", 0, body)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestWrapErrors(t *testing.T) {
	_, err := Wrap(nil, "abc", 10, body)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Wrap(failing{}, "abc", 10, body)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFit(t *testing.T) {
	m := &runeWidth{}
	got, err := Fit(m, "description", 4, body)
	require.NoError(t, err)
	assert.Equal(t, "desc", got)

	got, err = Fit(m, "ok", 4, body)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestMemoize(t *testing.T) {
	inner := &runeWidth{}
	m := Memoize(inner)
	for i := 0; i < 3; i++ {
		w, err := m.Width("abc", body)
		require.NoError(t, err)
		assert.Equal(t, 3.0, w)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Same(t, m, Memoize(m))
	assert.Nil(t, Memoize(nil))
}

func TestCoreFonts(t *testing.T) {
	m := NewCoreFonts()

	// Courier glyphs are 600/1000 em wide; 10pt is 25.4/72*10 mm.
	w, err := m.Width("abc", draw.Font{Family: draw.Mono, Size: 10})
	require.NoError(t, err)
	assert.InDelta(t, 3*0.6*10*25.4/72, w, 1e-6)

	regular, err := m.Width("Invoice", draw.Font{Size: 10})
	require.NoError(t, err)
	bold, err := m.Width("Invoice", draw.Font{Size: 10, Bold: true})
	require.NoError(t, err)
	assert.Greater(t, bold, regular)

	euro, err := m.Width("€", draw.Font{Size: 10})
	require.NoError(t, err)
	assert.Greater(t, euro, 0.0)
}

func TestOpenType(t *testing.T) {
	m, err := NewOpenType()
	require.NoError(t, err)

	mono := draw.Font{Family: draw.Mono, Size: 12}
	one, err := m.Width("a", mono)
	require.NoError(t, err)
	four, err := m.Width("abcd", mono)
	require.NoError(t, err)
	assert.InDelta(t, 4*one, four, 1e-6)

	small, err := m.Width("Total", draw.Font{Size: 8})
	require.NoError(t, err)
	large, err := m.Width("Total", draw.Font{Size: 16})
	require.NoError(t, err)
	assert.InDelta(t, 2*small, large, 0.05)
}

func TestWrapIsReproducible(t *testing.T) {
	m := Memoize(NewCoreFonts())
	text := strings.Repeat("Quarterly infrastructure maintenance and on-call support ", 6)

	first, err := Wrap(m, text, 40, body)
	require.NoError(t, err)
	require.Greater(t, len(first), 1)

	for i := 0; i < 5; i++ {
		again, err := Wrap(m, text, 40, body)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	n, err := Lines(m, text, 40, body)
	require.NoError(t, err)
	assert.Equal(t, len(first), n)

	for _, l := range first {
		w, err := m.Width(l, body)
		require.NoError(t, err)
		assert.LessOrEqual(t, w, 40.0)
	}
}

func TestConcurrentCoreFonts(t *testing.T) {
	m := NewCoreFonts()
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Width("concurrent", draw.Font{Size: 9, Bold: true}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.False(t, errors.Is(err, ErrUnavailable), err.Error())
	}
}
