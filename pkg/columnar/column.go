package columnar

// smallCapacity is the size below which columns grow to the exact size
// requested instead of doubling.
const smallCapacity = 16

// newCapacity returns the capacity a column of length current must grow
// to in order to hold required elements.
func newCapacity(current, required int) int {
	if required <= smallCapacity {
		return required
	}
	doubled := current * 2
	if doubled < required {
		return required
	}
	return doubled
}

// reserveColumn appends a new column sized for initialCapacity and returns
// its index.
func reserveColumn[T any](columns *[][]T, initialCapacity int) int {
	*columns = append(*columns, make([]T, initialCapacity))
	return len(*columns) - 1
}

// setValue writes columns[column][row], growing the column if needed.
// New slots hold the zero value of T.
func setValue[T any](columns [][]T, column, row int, value T) {
	values := columns[column]
	if row >= len(values) {
		grown := make([]T, newCapacity(len(values), row+1))
		copy(grown, values)
		values = grown
		columns[column] = values
	}
	values[row] = value
}

// getValue reads columns[column][row], returning the zero value for rows
// past the end of the column.
func getValue[T any](columns [][]T, column, row int) T {
	var zero T
	if column < 0 {
		return zero
	}
	values := columns[column]
	if row >= len(values) {
		return zero
	}
	return values[row]
}

// hasPrimitive reports whether the presence bit of row is set in the
// page of column.
func hasPrimitive(pages [][]byte, column, row int) bool {
	if column < 0 {
		return false
	}
	page := pages[column]
	i := row / 8
	if i >= len(page) {
		return false
	}
	return page[i]&(1<<(row%8)) != 0
}

// setPrimitivePresence sets or clears the presence bit of row, growing
// the page without disturbing existing bits.
func setPrimitivePresence(pages [][]byte, column, row int, present bool) {
	page := pages[column]
	i := row / 8
	if i >= len(page) {
		if !present {
			return
		}
		grown := make([]byte, newCapacity(len(page), i+1))
		copy(grown, page)
		page = grown
		pages[column] = page
	}
	if present {
		page[i] |= 1 << (row % 8)
	} else {
		page[i] &^= 1 << (row % 8)
	}
}

// trim shrinks every column to n elements.
func trim[T any](columns [][]T, n int) {
	for i, values := range columns {
		if len(values) > n {
			trimmed := make([]T, n)
			copy(trimmed, values)
			columns[i] = trimmed
		}
	}
}
