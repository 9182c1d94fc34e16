package allocator

import "math"

// minCostAssignment solves the square assignment problem for the given cost
// matrix and returns, for each row, the column it is matched to.
//
// This is the O(n³) shortest augmenting path form of Kuhn-Munkres with row and
// column potentials. Rows are inserted one at a time in index order and ties
// are broken towards the lowest column index, so the result is a pure
// function of the matrix.
func minCostAssignment(cost [][]int) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}

	const inf = math.MaxInt / 4

	// Potentials and matching are 1-indexed; index 0 is the virtual root column
	u := make([]int, n+1)
	v := make([]int, n+1)
	matchedRow := make([]int, n+1) // column -> row, 0 when free
	way := make([]int, n+1)
	minv := make([]int, n+1)
	used := make([]bool, n+1)

	for row := 1; row <= n; row++ {
		matchedRow[0] = row
		col0 := 0
		for j := range minv {
			minv[j] = inf
			used[j] = false
		}

		// Grow an alternating tree from the new row until a free column is reached
		for {
			used[col0] = true
			row0 := matchedRow[col0]
			delta := inf
			col1 := 0

			for col := 1; col <= n; col++ {
				if used[col] {
					continue
				}
				reduced := cost[row0-1][col-1] - u[row0] - v[col]
				if reduced < minv[col] {
					minv[col] = reduced
					way[col] = col0
				}
				if minv[col] < delta {
					delta = minv[col]
					col1 = col
				}
			}

			for col := 0; col <= n; col++ {
				if used[col] {
					u[matchedRow[col]] += delta
					v[col] -= delta
				} else {
					minv[col] -= delta
				}
			}

			col0 = col1
			if matchedRow[col0] == 0 {
				break
			}
		}

		// Flip the augmenting path
		for col0 != 0 {
			col1 := way[col0]
			matchedRow[col0] = matchedRow[col1]
			col0 = col1
		}
	}

	assignment := make([]int, n)
	for col := 1; col <= n; col++ {
		if matchedRow[col] != 0 {
			assignment[matchedRow[col]-1] = col - 1
		}
	}
	return assignment
}

// maxWeightAssignment pairs rows with columns of a rectangular weight matrix so
// that the sum of weights is maximal. The matrix is padded to a square with
// dummy rows/columns of cost 0 and turned into a minimisation over
// (maxWeight - weight). The returned slice has one entry per row: the matched
// column, or -1 when the row was paired with a dummy column.
func maxWeightAssignment(weights [][]int, cols int) []int {
	rows := len(weights)
	if rows == 0 {
		return nil
	}

	result := make([]int, rows)
	if cols == 0 {
		for i := range result {
			result[i] = -1
		}
		return result
	}

	maxWeight := 0
	for _, row := range weights {
		for _, w := range row {
			if w > maxWeight {
				maxWeight = w
			}
		}
	}

	n := max(rows, cols)
	cost := make([][]int, n)
	for i := range cost {
		cost[i] = make([]int, n)
		if i >= rows {
			continue
		}
		for j := 0; j < cols; j++ {
			cost[i][j] = maxWeight - weights[i][j]
		}
	}

	assignment := minCostAssignment(cost)
	for i := 0; i < rows; i++ {
		if assignment[i] < cols {
			result[i] = assignment[i]
		} else {
			result[i] = -1
		}
	}
	return result
}
