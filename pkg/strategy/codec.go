// Package strategy defines the wire contract between the backtest engine and a
// WebAssembly strategy plugin. The host encodes the price series and parameters as a
// protobuf Struct, the plugin answers with a protobuf ListValue of trades.
//
// Plugins written in Go import this package, call RegisterStrategy from init and are
// built with GOOS=wasip1 GOARCH=wasm -buildmode=c-shared.
package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Names of the functions a plugin module must export.
const (
	ExportMalloc        = "malloc"
	ExportFree          = "free"
	ExportEngineVersion = "backtest_strategy_engine_version"
	ExportExecute       = "backtest_strategy_execute"
)

// Aliases of the engine types so plugins built outside this module can name them.
type (
	PricePoint      = types.PricePoint
	PriceSeries     = types.PriceSeries
	ParameterValues = types.ParameterValues
	Trade           = types.Trade
)

// Trade directions.
const (
	Long  = types.TradeDirectionLong
	Short = types.TradeDirectionShort
)

// Func is the signature of a strategy body.
type Func func(series PriceSeries, params ParameterValues) ([]Trade, error)

// EncodeRequest serializes the input of one strategy invocation.
func EncodeRequest(series types.PriceSeries, params types.ParameterValues) ([]byte, error) {
	points := make([]any, len(series))
	for i, p := range series {
		points[i] = map[string]any{
			"date":  p.Date,
			"price": p.Price,
		}
	}

	values := make(map[string]any, len(params))
	for k, v := range params {
		values[k] = v
	}

	request, err := structpb.NewStruct(map[string]any{
		"series": points,
		"params": values,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	return proto.Marshal(request)
}

// DecodeRequest is the inverse of EncodeRequest.
func DecodeRequest(data []byte) (types.PriceSeries, types.ParameterValues, error) {
	request := &structpb.Struct{}
	if err := proto.Unmarshal(data, request); err != nil {
		return nil, nil, fmt.Errorf("failed to decode request: %w", err)
	}

	fields := request.GetFields()

	points := fields["series"].GetListValue().GetValues()
	series := make(types.PriceSeries, 0, len(points))

	for i, point := range points {
		p := point.GetStructValue()
		if p == nil {
			return nil, nil, fmt.Errorf("series[%d] is not an object", i)
		}

		series = append(series, types.PricePoint{
			Date:  p.GetFields()["date"].GetStringValue(),
			Price: p.GetFields()["price"].GetNumberValue(),
		})
	}

	params := make(types.ParameterValues)
	for k, v := range fields["params"].GetStructValue().GetFields() {
		params[k] = v.GetNumberValue()
	}

	return series, params, nil
}

// EncodeTrades serializes the trades returned by a strategy body.
func EncodeTrades(trades []types.Trade) ([]byte, error) {
	records := make([]any, len(trades))
	for i, t := range trades {
		records[i] = map[string]any{
			"entryDate":  t.EntryDate,
			"exitDate":   t.ExitDate,
			"entryPrice": t.EntryPrice,
			"exitPrice":  t.ExitPrice,
			"profit":     t.Profit,
			"type":       string(t.Direction),
		}
	}

	list, err := structpb.NewList(records)
	if err != nil {
		return nil, fmt.Errorf("failed to build trade list: %w", err)
	}

	return proto.Marshal(list)
}

// DecodeTrades parses a plugin response. A record without a profit gets the profit
// implied by its direction and prices; a record without a type is LONG.
func DecodeTrades(data []byte) ([]types.Trade, error) {
	list := &structpb.ListValue{}
	if err := proto.Unmarshal(data, list); err != nil {
		return nil, fmt.Errorf("failed to decode trades: %w", err)
	}

	trades := make([]types.Trade, 0, len(list.GetValues()))

	for i, value := range list.GetValues() {
		record := value.GetStructValue()
		if record == nil {
			return nil, fmt.Errorf("trade[%d] is not an object", i)
		}

		fields := record.GetFields()

		direction := types.TradeDirectionLong
		if raw := fields["type"].GetStringValue(); raw != "" {
			direction = types.TradeDirection(raw)
			if direction != types.TradeDirectionLong && direction != types.TradeDirectionShort {
				return nil, fmt.Errorf("trade[%d] has unknown type %q", i, raw)
			}
		}

		trade := types.Trade{
			EntryDate:  fields["entryDate"].GetStringValue(),
			ExitDate:   fields["exitDate"].GetStringValue(),
			EntryPrice: fields["entryPrice"].GetNumberValue(),
			ExitPrice:  fields["exitPrice"].GetNumberValue(),
			Direction:  direction,
		}

		if profit, ok := fields["profit"]; ok {
			trade.Profit = profit.GetNumberValue()
		} else {
			trade.Profit = types.ProfitFor(direction, trade.EntryPrice, trade.ExitPrice)
		}

		trades = append(trades, trade)
	}

	return trades, nil
}

// PackPointer packs a linear memory pointer and length into the uint64 returned by exports.
func PackPointer(ptr, size uint32) uint64 {
	return uint64(ptr)<<32 | uint64(size)
}

// UnpackPointer is the inverse of PackPointer.
func UnpackPointer(packed uint64) (ptr, size uint32) {
	return uint32(packed >> 32), uint32(packed)
}
