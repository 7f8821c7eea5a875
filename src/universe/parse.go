package universe

import (
	"strings"

	"github.com/pkg/errors"
)

//Parse builds the grid from newline separated rows
//'0' and '.' are dead cells, '1' and '#' are live ones
//the cells are either packed ("010") or separated by one space like Render does ("0 1 0"),
//the first row decides the format for the whole pattern
//all rows must have the length of the first one
func Parse(text string) (*Grid, error) {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, errors.Wrap(ErrParse, "empty pattern")
	}

	lines := strings.Split(text, "\n")
	spaced := len(lines[0]) > 1 && lines[0][1] == ' '
	rows := make([][]Cell, 0, len(lines))
	for i, l := range lines {
		row, err := parseRow(l, spaced)
		if err != nil {
			return nil, errors.Wrapf(err, "row %v", i+1)
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, errors.Wrapf(ErrParse, "row %v has %v cells, expected %v", i+1, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}

	g, err := NewBlank(len(rows[0]), len(rows))
	if err != nil {
		return nil, errors.Wrap(ErrParse, err.Error())
	}
	for i := range rows {
		copy(g.cells[i], rows[i])
	}
	return g, nil
}

//parseRow reads one row, in the spaced format every odd column is the separator
func parseRow(l string, spaced bool) ([]Cell, error) {
	if spaced && len(l)%2 == 0 {
		return nil, errors.Wrapf(ErrParse, "separated row of even length %v", len(l))
	}
	row := make([]Cell, 0, len(l))
	for i := 0; i < len(l); i++ {
		ch := l[i]
		if spaced && i%2 == 1 {
			if ch != ' ' {
				return nil, errors.Wrapf(ErrParse, "expected separator at column %v, got %q", i+1, ch)
			}
			continue
		}
		switch ch {
		case '0', glyphs[Dead]:
			row = append(row, Dead)
		case '1', glyphs[Live]:
			row = append(row, Live)
		default:
			return nil, errors.Wrapf(ErrParse, "unexpected character %q at column %v", ch, i+1)
		}
	}
	return row, nil
}
