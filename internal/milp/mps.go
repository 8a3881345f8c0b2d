package milp

import (
	"bufio"
	"fmt"
	"io"
)

const objRowName = "OBJ"

// WriteMPS exports the model as free-format MPS, the interchange
// representation understood by every mainstream MILP engine. The objective
// is declared with an explicit OBJSENSE MAX section and every variable is
// marked binary in the BOUNDS section.
func (m *Model) WriteMPS(w io.Writer) error {
	out := bufio.NewWriter(w)

	fmt.Fprintln(out, "NAME          cacheplan")
	fmt.Fprintln(out, "OBJSENSE")
	fmt.Fprintln(out, "    MAX")

	fmt.Fprintln(out, "ROWS")
	fmt.Fprintf(out, " N  %s\n", objRowName)
	for _, constraint := range m.constraints {
		var kind byte
		switch constraint.Sense {
		case LessEq:
			kind = 'L'
		case GreaterEq:
			kind = 'G'
		case Equal:
			kind = 'E'
		}
		fmt.Fprintf(out, " %c  %s\n", kind, constraint.Name)
	}

	// MPS is column-major, the model is row-major. Gather per-variable
	// entries first.
	type entry struct {
		row  string
		coef float64
	}
	columns := make([][]entry, len(m.names))
	for i, coef := range m.objective {
		if coef != 0 {
			columns[i] = append(columns[i], entry{row: objRowName, coef: coef})
		}
	}
	for _, constraint := range m.constraints {
		for _, term := range constraint.Terms {
			columns[term.Var.index] = append(columns[term.Var.index], entry{
				row:  constraint.Name,
				coef: term.Coef,
			})
		}
	}

	fmt.Fprintln(out, "COLUMNS")
	fmt.Fprintln(out, "    MARKER                 'MARKER'                 'INTORG'")
	for i, name := range m.names {
		if len(columns[i]) == 0 {
			// A column must appear at least once to be declared.
			fmt.Fprintf(out, "    %s  %s  0\n", name, objRowName)
			continue
		}
		for _, e := range columns[i] {
			fmt.Fprintf(out, "    %s  %s  %g\n", name, e.row, e.coef)
		}
	}
	fmt.Fprintln(out, "    MARKER                 'MARKER'                 'INTEND'")

	fmt.Fprintln(out, "RHS")
	for _, constraint := range m.constraints {
		if constraint.RHS != 0 {
			fmt.Fprintf(out, "    RHS  %s  %g\n", constraint.Name, constraint.RHS)
		}
	}

	fmt.Fprintln(out, "BOUNDS")
	for _, name := range m.names {
		fmt.Fprintf(out, " BV BND  %s\n", name)
	}

	fmt.Fprintln(out, "ENDATA")

	return out.Flush()
}
