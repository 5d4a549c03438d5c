package board

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bingogame-go/internal/dependencies/mocks"
	"github.com/mcoot/bingogame-go/internal/dependencies/random"
	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(random.New(), testutil.NopLogger())
}

func (s *ServiceSuite) TestDuelBoardHoldsOneToTwentyFive() {
	b, err := s.service.Deal(model.DuelConfig())
	s.Require().NoError(err)

	seen := map[int]bool{}
	for _, v := range b.Values() {
		s.GreaterOrEqual(v, 1)
		s.LessOrEqual(v, 25)
		s.False(seen[v], "duplicate value %d", v)
		seen[v] = true
	}
	s.Len(seen, 25)
	s.False(b.Marked[2][2])
}

func (s *ServiceSuite) TestBroadcastBoardIsBandedWithFreeCentre() {
	b, err := s.service.Deal(model.BroadcastConfig())
	s.Require().NoError(err)

	seen := map[int]bool{}
	for row := 0; row < model.BoardSize; row++ {
		for col := 0; col < model.BoardSize; col++ {
			v := b.Numbers[row][col]
			if row == 2 && col == 2 {
				s.Equal(0, v)
				s.True(b.Marked[row][col])
				continue
			}
			s.GreaterOrEqual(v, col*15+1)
			s.LessOrEqual(v, col*15+15)
			s.False(seen[v])
			seen[v] = true
			s.False(b.Marked[row][col])
		}
	}
	s.Len(seen, 24)
}

func (s *ServiceSuite) TestDealIsDeterministicWithMockRandom() {
	svc := New(mocks.NewMockRandom(), testutil.NopLogger())

	b, err := svc.Deal(model.DuelConfig())
	s.Require().NoError(err)

	// Intn always returning 0 leaves the pool in order
	s.Equal([model.BoardSize]int{1, 2, 3, 4, 5}, b.Numbers[0])
	s.Equal([model.BoardSize]int{21, 22, 23, 24, 25}, b.Numbers[4])
}

func (s *ServiceSuite) TestDealRejectsSmallPool() {
	cfg := model.DuelConfig()
	cfg.PoolMax = 20

	_, err := s.service.Deal(cfg)
	s.ErrorIs(err, ErrPoolTooSmall)
}
