package stats

type ListFilter struct {
	Measurement *string
	Node        *string
	Computed    *bool
}

func (filter ListFilter) SetMeasurement(v string) ListFilter {
	filter.Measurement = &v
	return filter
}

func (filter ListFilter) SetNode(v string) ListFilter {
	filter.Node = &v
	return filter
}

func (filter ListFilter) SetComputed(v bool) ListFilter {
	filter.Computed = &v
	return filter
}
