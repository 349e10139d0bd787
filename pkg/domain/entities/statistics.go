package entities

// GanttStatistics aggregates a flattened schedule for the cockpit panels
type GanttStatistics struct {
	TotalMaterials    int            `json:"totalMaterials"`
	ByStatus          map[string]int `json:"byStatus"`
	ByMaterialType    map[string]int `json:"byMaterialType"`
	ShortageCount     int            `json:"shortageCount"`
	ExternalCount     int            `json:"externalCount"`
	ExternalWithPR    int            `json:"externalWithPR"`
	ExternalWithPO    int            `json:"externalWithPO"`
	ExternalUncovered int            `json:"externalUncovered"` // external, neither PR nor PO
	MaxDepth          int            `json:"maxDepth"`
}

// RiskCount is the number of bars in risk state
func (s GanttStatistics) RiskCount() int {
	return s.ByStatus[Risk.String()]
}

// OrderedRatio is the share of external materials already covered by a PO
func (s GanttStatistics) OrderedRatio() float64 {
	if s.ExternalCount == 0 {
		return 0
	}
	return float64(s.ExternalWithPO) / float64(s.ExternalCount)
}
