package board

import (
	"errors"
	"log/slog"

	"github.com/mcoot/bingogame-go/internal/dependencies/random"
	"github.com/mcoot/bingogame-go/internal/model"
)

// ErrPoolTooSmall is returned when a configuration cannot fill a board with distinct numbers
var ErrPoolTooSmall = errors.New("number pool too small for a 5x5 board")

// Service deals bingo boards
type Service struct {
	random random.Random
	logger *slog.Logger
}

// New creates a new BoardService
func New(rnd random.Random, logger *slog.Logger) *Service {
	return &Service{
		random: rnd,
		logger: logger.With(slog.String("component", "board")),
	}
}

// Deal generates a fresh board for the given room configuration.
//
// Banded boards split [1, PoolMax] into five equal column ranges (B-I-N-G-O)
// and draw five distinct values per column. Unbanded boards draw 25 distinct
// values from the whole pool. With FreeCenter the centre holds 0 and starts marked.
func (s *Service) Deal(cfg model.RoomConfig) (*model.Board, error) {
	b := &model.Board{FreeCenter: cfg.FreeCenter}

	if cfg.Banded {
		width := cfg.PoolMax / model.BoardSize
		if width < model.BoardSize {
			return nil, ErrPoolTooSmall
		}
		for col := 0; col < model.BoardSize; col++ {
			band := sequence(col*width+1, width)
			random.Shuffle(s.random, band, model.BoardSize)
			for row := 0; row < model.BoardSize; row++ {
				b.Numbers[row][col] = band[row]
			}
		}
	} else {
		if cfg.PoolMax < model.BoardSize*model.BoardSize {
			return nil, ErrPoolTooSmall
		}
		pool := sequence(1, cfg.PoolMax)
		random.Shuffle(s.random, pool, model.BoardSize*model.BoardSize)
		for i := 0; i < model.BoardSize*model.BoardSize; i++ {
			b.Numbers[i/model.BoardSize][i%model.BoardSize] = pool[i]
		}
	}

	if cfg.FreeCenter {
		b.Numbers[model.Center.Row][model.Center.Col] = 0
		b.Marked[model.Center.Row][model.Center.Col] = true
	}

	return b, nil
}

// sequence returns [start, start+n)
func sequence(start, n int) []int {
	values := make([]int, n)
	for i := range values {
		values[i] = start + i
	}
	return values
}
