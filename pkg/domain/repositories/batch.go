package repositories

import "github.com/vsinha/cockpit/pkg/domain/entities"

// DefaultBatchSize is the upstream limit on codes per lookup query
const DefaultBatchSize = 50

// ChunkCodes splits codes into consecutive batches of at most size codes
func ChunkCodes(codes []entities.MaterialCode, size int) [][]entities.MaterialCode {
	if size <= 0 {
		size = DefaultBatchSize
	}
	chunks := make([][]entities.MaterialCode, 0, (len(codes)+size-1)/size)
	for start := 0; start < len(codes); start += size {
		end := start + size
		if end > len(codes) {
			end = len(codes)
		}
		chunks = append(chunks, codes[start:end])
	}
	return chunks
}

// UniqueCodes removes empty and repeated codes, keeping first-seen order
func UniqueCodes(codes []entities.MaterialCode) []entities.MaterialCode {
	seen := make(map[entities.MaterialCode]bool, len(codes))
	unique := make([]entities.MaterialCode, 0, len(codes))
	for _, code := range codes {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		unique = append(unique, code)
	}
	return unique
}
