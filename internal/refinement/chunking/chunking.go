// Package chunking implements the chunking strategy from spec §4.5: a
// sequence of contiguous, optionally overlapping substrings in
// token-equivalent units (~4 chars/token), whose union covers the entire
// input.
package chunking

// charsPerToken approximates the token-equivalent unit spec §4.5 uses for
// chunkSize/chunkOverlap, following the common ~4-chars-per-token rule of
// thumb for English prose.
const charsPerToken = 4

// Chunk is one produced span, not yet identified or enriched.
type Chunk struct {
	Content     string
	Index       int
	StartOffset int
	EndOffset   int
}

// Split divides content into contiguous chunks of chunkSize tokens,
// overlapping the previous chunk by chunkOverlap tokens. The final chunk
// may be shorter than chunkSize; the union of all chunks covers every
// offset of content, and offsets in an overlapped region appear in both
// adjacent chunks.
func Split(content string, chunkSize, chunkOverlap int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}

	sizeChars := chunkSize * charsPerToken
	overlapChars := chunkOverlap * charsPerToken
	stride := sizeChars - overlapChars

	if len(content) == 0 {
		return []Chunk{{Content: "", Index: 0, StartOffset: 0, EndOffset: 0}}
	}

	var chunks []Chunk
	index := 0
	for start := 0; start < len(content); start += stride {
		end := start + sizeChars
		if end > len(content) {
			end = len(content)
		}
		chunks = append(chunks, Chunk{
			Content:     content[start:end],
			Index:       index,
			StartOffset: start,
			EndOffset:   end,
		})
		index++
		if end == len(content) {
			break
		}
	}
	return chunks
}
