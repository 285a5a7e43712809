package types

import "github.com/moznion/go-optional"

// CrossoverIndicators are the moving averages behind the crossover rule, aligned with the
// price series they were computed from. Leading entries without enough history are None.
type CrossoverIndicators struct {
	ShortPeriod int                        `json:"shortPeriod"`
	LongPeriod  int                        `json:"longPeriod"`
	ShortSMA    []optional.Option[float64] `json:"shortSMA"`
	LongSMA     []optional.Option[float64] `json:"longSMA"`
}
