package draft

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const rule = "%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%%"

// Banner is written at the top of every generated file.
const Banner = "\n" + rule +
	"\n%%% generated by template.py, please do not edit directly\n" +
	rule + "\n"

// Errors returned by [Render].
var (
	ErrUnsupported  = errors.New("unsupported statement")
	ErrUnterminated = errors.New("unterminated delimiter")
	ErrResolve      = errors.New("unable to render")
)

// Resolver returns the formatted value of a placeholder key.
type Resolver func(ctx context.Context, key string) (string, error)

// delimiter matches the start of every construct Render handles. Line
// statements are only recognized at the beginning of a line.
var delimiter = regexp.MustCompile(
	`\\VAR\{|\\#\{|\\BLOCK\{|(?m:^[ \t]*%%\\LINE)|%#`,
)

// Render writes [Banner] followed by the document read from r to w, with
// every \VAR{key} placeholder replaced by resolve(key). Comments written as
// \#{...} or following %# on a line are removed. Line endings are
// normalized to "\n" and a single trailing newline is dropped.
//
// Rendering is strict: the first placeholder that fails to resolve aborts
// the render and nothing is written to w. Control statements (\BLOCK{...}
// and %%\LINE) are not supported and also abort the render.
func Render(
	ctx context.Context,
	r io.Reader,
	w io.Writer,
	resolve Resolver,
) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	src := strings.ReplaceAll(string(raw), "\r\n", "\n")
	src = strings.TrimSuffix(src, "\n")

	var out strings.Builder

	out.WriteString(Banner)

	pos := 0

	for _, loc := range delimiter.FindAllStringIndex(src, -1) {
		if loc[0] < pos {
			continue // inside a construct already consumed
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		out.WriteString(src[pos:loc[0]])

		tok := strings.TrimLeft(src[loc[0]:loc[1]], " \t")
		line := 1 + strings.Count(src[:loc[0]], "\n")

		switch tok {
		case `\VAR{`, `\#{`:
			end := strings.IndexByte(src[loc[1]:], '}')
			if end < 0 {
				return fmt.Errorf("line %d: %w %q", line, ErrUnterminated, tok)
			}

			end += loc[1]

			if tok == `\VAR{` {
				key := src[loc[1]:end]

				val, err := resolve(ctx, key)
				if err != nil {
					return fmt.Errorf("line %d: %w %q: %w", line, ErrResolve, key, err)
				}

				out.WriteString(val)
			}

			pos = end + 1

		case "%#":
			end := strings.IndexByte(src[loc[1]:], '\n')
			if end < 0 {
				pos = len(src)
			} else {
				pos = loc[1] + end
			}

		default:
			return fmt.Errorf("line %d: %w %q", line, ErrUnsupported, tok)
		}
	}

	if pos < len(src) {
		out.WriteString(src[pos:])
	}

	_, err = io.WriteString(w, out.String())

	return err
}
