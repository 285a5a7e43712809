package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// MATestSuite is a test suite for the moving average utility
type MATestSuite struct {
	suite.Suite
}

func TestMATestSuite(t *testing.T) {
	suite.Run(t, new(MATestSuite))
}

func (suite *MATestSuite) TestMovingAverage() {
	testCases := []struct {
		name     string
		series   []float64
		window   int
		expected []float64
	}{
		{
			name:     "empty series",
			series:   []float64{},
			window:   3,
			expected: []float64{},
		},
		{
			name:     "window larger than series",
			series:   []float64{1, 2},
			window:   3,
			expected: []float64{},
		},
		{
			name:     "window of three",
			series:   []float64{1, 2, 3, 4, 5},
			window:   3,
			expected: []float64{2, 3, 4},
		},
		{
			name:     "window of one is identity",
			series:   []float64{4, 8, 15},
			window:   1,
			expected: []float64{4, 8, 15},
		},
		{
			name:     "window equals length",
			series:   []float64{2, 4, 6, 8},
			window:   4,
			expected: []float64{5},
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			result, err := MovingAverage(tc.series, tc.window)
			suite.Require().NoError(err)
			suite.Equal(tc.expected, result)
		})
	}
}

func (suite *MATestSuite) TestMovingAverageConstantSeries() {
	series := []float64{7.25, 7.25, 7.25, 7.25, 7.25, 7.25}

	for window := 1; window <= len(series); window++ {
		result, err := MovingAverage(series, window)
		suite.Require().NoError(err)
		suite.Len(result, len(series)-window+1)

		for _, v := range result {
			suite.Equal(7.25, v)
		}
	}
}

func (suite *MATestSuite) TestMovingAverageInvalidWindow() {
	for _, window := range []int{0, -1} {
		result, err := MovingAverage([]float64{1, 2, 3}, window)
		suite.Nil(result)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
	}
}

func (suite *MATestSuite) TestMovingAverageNaiveSummation() {
	series := []float64{0.1, 0.2, 0.3}

	result, err := MovingAverage(series, 3)
	suite.Require().NoError(err)
	suite.Equal((0.0+0.1+0.2+0.3)/3, result[0])
}

func (suite *MATestSuite) TestAlignMovingAverage() {
	sma, err := MovingAverage([]float64{1, 2, 3, 4, 5}, 3)
	suite.Require().NoError(err)

	aligned := AlignMovingAverage(sma, 3)
	suite.Len(aligned, 5)
	suite.True(aligned[0].IsNone())
	suite.True(aligned[1].IsNone())
	suite.Equal(2.0, aligned[2].Unwrap())
	suite.Equal(4.0, aligned[4].Unwrap())
}

func (suite *MATestSuite) TestAlignMovingAverageEmpty() {
	aligned := AlignMovingAverage([]float64{}, 5)
	suite.Len(aligned, 4)

	for _, v := range aligned {
		suite.True(v.IsNone())
	}
}
