package parallel

import (
	"context"
	"iter"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/utkarsh5026/parcol/job"
)

// Text is an adapter over a string whose elements are its runes, each as a one
// rune string. A byte that is not valid UTF-8 is an element on its own and is
// kept as is. Results are joined back into a string.
type Text struct {
	e     *Executor
	runes []string
}

// NewText splits s into runes.
func NewText(e *Executor, s string) *Text {
	return &Text{e: e, runes: slices.Collect(runeStrings(s))}
}

// runeStrings yields s one encoded rune at a time, slicing s rather than
// re-encoding so invalid bytes survive.
func runeStrings(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for i := 0; i < len(s); {
			_, size := utf8.DecodeRuneInString(s[i:])
			if !yield(s[i : i+size]) {
				return
			}
			i += size
		}
	}
}

func joined(e *Executor, parts []string) *Text {
	return NewText(e, strings.Join(parts, ""))
}

func (t *Text) Shape() Shape { return ShapeText }

func (t *Text) Len() int { return len(t.runes) }

func (t *Text) All() iter.Seq[string] { return slices.Values(t.runes) }

func (t *Text) String() string { return strings.Join(t.runes, "") }

// Map replaces every rune with f(rune); f may return any string, including an
// empty one.
func (t *Text) Map(ctx context.Context, f func(string) (string, error)) (*Text, error) {
	out, err := run(ctx, t.e, ShapeText, "map", t.runes, job.MapElements(lift(f)))
	if err != nil {
		return nil, err
	}
	return joined(t.e, out), nil
}

func (t *Text) Filter(ctx context.Context, pred func(string) (bool, error)) (*Text, error) {
	out, err := run(ctx, t.e, ShapeText, "filter", t.runes, job.FilterElements(lift(pred)))
	if err != nil {
		return nil, err
	}
	return joined(t.e, out), nil
}

// Flatten returns t: text is already flat.
func (t *Text) Flatten(context.Context) (*Text, error) {
	return t, nil
}

// FlatMap is Map.
func (t *Text) FlatMap(ctx context.Context, f func(string) (string, error)) (*Text, error) {
	return t.Map(ctx, f)
}

func (t *Text) Foreach(ctx context.Context, f func(string) error) error {
	_, err := run(ctx, t.e, ShapeText, "foreach", t.runes, job.EachElement(liftEach(f)))
	return err
}

func (t *Text) Reduce(ctx context.Context, op func(acc, v string) (string, error), init ...string) (string, error) {
	return reduce(ctx, t.e, ShapeText, t.runes, op, init)
}
