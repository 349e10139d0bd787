package services

import "github.com/vsinha/cockpit/pkg/domain/entities"

// Summarize aggregates flattened bars into cockpit statistics
func Summarize(bars []*entities.GanttBar) entities.GanttStatistics {
	stats := entities.GanttStatistics{
		TotalMaterials: len(bars),
		ByStatus:       make(map[string]int),
		ByMaterialType: make(map[string]int),
	}

	for _, bar := range bars {
		stats.ByStatus[bar.Status.String()]++
		stats.ByMaterialType[bar.MaterialType.String()]++

		if bar.HasShortage {
			stats.ShortageCount++
		}
		if bar.BOMLevel > stats.MaxDepth {
			stats.MaxDepth = bar.BOMLevel
		}

		if !bar.MaterialType.IsExternal() {
			continue
		}
		stats.ExternalCount++
		hasPR := bar.PRStatus == entities.Present
		hasPO := bar.POStatus == entities.Present
		if hasPR {
			stats.ExternalWithPR++
		}
		if hasPO {
			stats.ExternalWithPO++
		}
		if !hasPR && !hasPO {
			stats.ExternalUncovered++
		}
	}

	return stats
}
