package types

// ParameterValues maps a strategy parameter key to its numeric value for one run.
type ParameterValues map[string]float64

// Clone returns an independent copy so runs never share parameter state.
func (p ParameterValues) Clone() ParameterValues {
	clone := make(ParameterValues, len(p))
	for k, v := range p {
		clone[k] = v
	}

	return clone
}

// Merge returns a new mapping holding p overridden by overrides.
func (p ParameterValues) Merge(overrides ParameterValues) ParameterValues {
	merged := p.Clone()
	for k, v := range overrides {
		merged[k] = v
	}

	return merged
}
