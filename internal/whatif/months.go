package whatif

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Months is a month count that may be unreachable within MaxIterations.
// Unreachable counts serialize as JSON null, never as a sentinel number.
type Months struct {
	N         int
	Reachable bool
}

// MonthsOf returns a reachable month count.
func MonthsOf(n int) Months {
	return Months{N: n, Reachable: true}
}

// Unreachable is the month count of a goal that is never met.
var Unreachable = Months{}

// Less reports whether m is strictly sooner than o. Unreachable counts sort last.
func (m Months) Less(o Months) bool {
	switch {
	case !m.Reachable:
		return false
	case !o.Reachable:
		return true
	}
	return m.N < o.N
}

func (m Months) String() string {
	if !m.Reachable {
		return "unreachable"
	}
	return strconv.Itoa(m.N)
}

func (m Months) MarshalJSON() ([]byte, error) {
	if !m.Reachable {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(m.N)), nil
}

func (m *Months) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Unreachable
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = MonthsOf(n)
	return nil
}
