package ta

import (
	"candlekit/internal/domain"
)

type PivotType string

const (
	PivotTraditional PivotType = "traditional"
	PivotFibonacci   PivotType = "fibonacci"
	PivotWoodie      PivotType = "woodie"
	PivotCamarilla   PivotType = "camarilla"
)

type PivotResult struct {
	Type  PivotType `json:"type"`
	Pivot float64   `json:"pivot"`
	R1    float64   `json:"r1"`
	R2    float64   `json:"r2"`
	R3    float64   `json:"r3"`
	S1    float64   `json:"s1"`
	S2    float64   `json:"s2"`
	S3    float64   `json:"s3"`
}

// PivotPoints derives pivot levels from the prior period's bar. An unknown
// pivot type is a validation failure.
func PivotPoints(prev domain.Candle, typ PivotType) (*PivotResult, error) {
	h, l, c, o := prev.High, prev.Low, prev.Close, prev.Open
	spread := h - l

	result := &PivotResult{Type: typ}
	switch typ {
	case PivotTraditional:
		pp := (h + l + c) / 3
		result.Pivot = pp
		result.R1 = 2*pp - l
		result.S1 = 2*pp - h
		result.R2 = pp + spread
		result.S2 = pp - spread
		result.R3 = h + 2*(pp-l)
		result.S3 = l - 2*(h-pp)
	case PivotFibonacci:
		pp := (h + l + c) / 3
		result.Pivot = pp
		result.R1 = pp + spread*0.382
		result.S1 = pp - spread*0.382
		result.R2 = pp + spread*0.618
		result.S2 = pp - spread*0.618
		result.R3 = pp + spread
		result.S3 = pp - spread
	case PivotWoodie:
		pp := (h + l + 2*o) / 4
		result.Pivot = pp
		result.R1 = 2*pp - l
		result.S1 = 2*pp - h
		result.R2 = pp + spread
		result.S2 = pp - spread
		result.R3 = h + 2*(pp-l)
		result.S3 = l - 2*(h-pp)
	case PivotCamarilla:
		result.Pivot = (h + l + c) / 3
		result.R1 = c + spread*1.1/12
		result.S1 = c - spread*1.1/12
		result.R2 = c + spread*1.1/6
		result.S2 = c - spread*1.1/6
		result.R3 = c + spread*1.1/4
		result.S3 = c - spread*1.1/4
	default:
		return nil, &domain.ValidationError{Field: "pivot_type", Reason: "unknown pivot type " + string(typ)}
	}
	return result, nil
}

type PivotPosition string

const (
	PositionAboveR1 PivotPosition = "above_r1"
	PositionBelowS1 PivotPosition = "below_s1"
	PositionInside  PivotPosition = "between_s1_r1"
)

func (r *PivotResult) Position(price float64) PivotPosition {
	switch {
	case price > r.R1:
		return PositionAboveR1
	case price < r.S1:
		return PositionBelowS1
	default:
		return PositionInside
	}
}
