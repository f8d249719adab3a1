package models

// CellState marks a single board cell as still in play or already taken.
type CellState uint8

const (
	CellActive CellState = iota
	CellCleared
)

// Board is a square grid of cells. Coordinates are zero-based.
type Board struct {
	Side  int
	Cells [][]CellState
}

// NewBoard returns a side x side board with every cell active.
func NewBoard(side int) *Board {
	cells := make([][]CellState, side)
	for i := range cells {
		cells[i] = make([]CellState, side)
	}
	return &Board{Side: side, Cells: cells}
}

// InBounds reports whether (row, col) addresses a cell on the board.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Side && col >= 0 && col < b.Side
}

// Cell returns the state of (row, col). Caller must check bounds first.
func (b *Board) Cell(row, col int) CellState {
	return b.Cells[row][col]
}

// Clear marks (row, col) cleared and reports whether the cell was active.
func (b *Board) Clear(row, col int) bool {
	if b.Cells[row][col] == CellCleared {
		return false
	}
	b.Cells[row][col] = CellCleared
	return true
}

// ActiveCount returns the number of cells still active.
func (b *Board) ActiveCount() int {
	n := 0
	for _, row := range b.Cells {
		for _, c := range row {
			if c == CellActive {
				n++
			}
		}
	}
	return n
}
