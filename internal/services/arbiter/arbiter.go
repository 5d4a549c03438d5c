// Package arbiter decides whether a marked board satisfies the win condition.
package arbiter

import "github.com/mcoot/bingogame-go/internal/model"

// Progress letters, one per completed line
const progressLetters = "BINGO"

// LineKind identifies the direction of a board line
type LineKind string

const (
	LineRow      LineKind = "row"
	LineColumn   LineKind = "column"
	LineDiagonal LineKind = "diagonal"
)

// Line is one of the twelve lines on a 5x5 board
type Line struct {
	Kind  LineKind
	Index int // Row or column index; 0 is the main diagonal, 1 the anti-diagonal
}

// Result is the outcome of evaluating a board
type Result struct {
	Lines          []Line
	CompletedLines int
	IsWin          bool
}

// Evaluate counts the completed lines on a board. The free centre counts as
// marked when present since Board keeps it marked.
func Evaluate(b *model.Board, threshold int) Result {
	var lines []Line

	for i := 0; i < model.BoardSize; i++ {
		row, col := true, true
		for j := 0; j < model.BoardSize; j++ {
			row = row && covered(b, i, j)
			col = col && covered(b, j, i)
		}
		if row {
			lines = append(lines, Line{Kind: LineRow, Index: i})
		}
		if col {
			lines = append(lines, Line{Kind: LineColumn, Index: i})
		}
	}

	main, anti := true, true
	for i := 0; i < model.BoardSize; i++ {
		main = main && covered(b, i, i)
		anti = anti && covered(b, i, model.BoardSize-1-i)
	}
	if main {
		lines = append(lines, Line{Kind: LineDiagonal, Index: 0})
	}
	if anti {
		lines = append(lines, Line{Kind: LineDiagonal, Index: 1})
	}

	return Result{
		Lines:          lines,
		CompletedLines: len(lines),
		IsWin:          threshold > 0 && len(lines) >= threshold,
	}
}

// covered reports whether a cell counts towards a line. The free cell always does.
func covered(b *model.Board, row, col int) bool {
	return b.Marked[row][col] || b.IsFree(model.Position{Row: row, Col: col})
}

// Progress returns the B-I-N-G-O letters earned by the given number of lines
func Progress(completedLines int) string {
	if completedLines <= 0 {
		return ""
	}
	if completedLines > len(progressLetters) {
		completedLines = len(progressLetters)
	}
	return progressLetters[:completedLines]
}
