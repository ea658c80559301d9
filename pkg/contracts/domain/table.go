package domain

// Table names used as keys for loaded and processed data
const (
	TableOrders     = "orders"
	TableOrderItems = "order_items"
	TableProducts   = "products"
	TableCustomers  = "customers"
	TableReviews    = "reviews"
	TablePayments   = "payments"
)

// Table is an ordered collection of typed records together with the
// set of columns the source carried.
type Table[T any] struct {
	Name    string
	Rows    []T
	columns []string
	colSet  map[string]struct{}
}

// NewTable creates a table with the given schema columns and rows
func NewTable[T any](name string, columns []string, rows []T) *Table[T] {
	cols := make([]string, len(columns))
	copy(cols, columns)

	set := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		set[c] = struct{}{}
	}

	if rows == nil {
		rows = []T{}
	}

	return &Table[T]{
		Name:    name,
		Rows:    rows,
		columns: cols,
		colSet:  set,
	}
}

// Len returns the number of rows
func (t *Table[T]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Columns returns a copy of the column names in source order
func (t *Table[T]) Columns() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the table carries the named column
func (t *Table[T]) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.colSet[name]
	return ok
}

// MissingColumns returns the required columns the table lacks, in the order given
func (t *Table[T]) MissingColumns(required ...string) []string {
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Filter returns a new table with the same schema holding the rows keep accepts
func (t *Table[T]) Filter(keep func(T) bool) *Table[T] {
	rows := make([]T, 0, len(t.Rows))
	for _, r := range t.Rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return NewTable(t.Name, t.columns, rows)
}
