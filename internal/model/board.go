package model

// BoardSize is the grid dimension of every bingo board
const BoardSize = 5

// Position identifies a cell on the board
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// Center is the free cell position
var Center = Position{Row: BoardSize / 2, Col: BoardSize / 2}

// Board is a player's 5x5 grid and the cells they have marked.
// The free centre, when present, holds 0 and is always marked.
type Board struct {
	Numbers    [BoardSize][BoardSize]int
	Marked     [BoardSize][BoardSize]bool
	FreeCenter bool
}

// Find returns the position of n on the board
func (b *Board) Find(n int) (Position, bool) {
	if n <= 0 {
		return Position{}, false
	}
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if b.Numbers[row][col] == n {
				return Position{Row: row, Col: col}, true
			}
		}
	}
	return Position{}, false
}

// Contains reports whether n appears on the board
func (b *Board) Contains(n int) bool {
	_, ok := b.Find(n)
	return ok
}

// Mark marks the cell holding n. Returns false if n is not on the board.
func (b *Board) Mark(n int) bool {
	pos, ok := b.Find(n)
	if !ok {
		return false
	}
	b.Marked[pos.Row][pos.Col] = true
	return true
}

// IsMarked reports whether the cell holding n is marked
func (b *Board) IsMarked(n int) bool {
	pos, ok := b.Find(n)
	return ok && b.Marked[pos.Row][pos.Col]
}

// IsFree reports whether pos is the free cell
func (b *Board) IsFree(pos Position) bool {
	return b.FreeCenter && pos == Center
}

// Values returns every number on the board in row-major order, skipping the free cell
func (b *Board) Values() []int {
	values := make([]int, 0, BoardSize*BoardSize)
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if b.IsFree(Position{Row: row, Col: col}) {
				continue
			}
			values = append(values, b.Numbers[row][col])
		}
	}
	return values
}
