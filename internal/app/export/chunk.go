package export

// Chunk splits statements into consecutive groups whose serialized size (see
// ChunkSize) stays within maxBytes. A chunk is closed as soon as the next
// statement would push it over the bound. A chunk is never empty, so a single
// statement larger than maxBytes gets a chunk of its own. maxBytes <= 0
// disables splitting.
func Chunk(statements []string, maxBytes int) [][]string {
	if len(statements) == 0 {
		return nil
	}
	if maxBytes <= 0 {
		return [][]string{statements}
	}

	var (
		chunks  [][]string
		current []string
		size    int
	)
	for _, stmt := range statements {
		n := statementSize(stmt)
		if len(current) > 0 && size+n > maxBytes {
			chunks = append(chunks, current)
			current, size = nil, 0
		}
		current = append(current, stmt)
		size += n
	}
	return append(chunks, current)
}

// ChunkSize is the number of bytes a chunk occupies when written: each
// statement followed by a blank-line separator.
func ChunkSize(chunk []string) int {
	total := 0
	for _, stmt := range chunk {
		total += statementSize(stmt)
	}
	return total
}

func statementSize(stmt string) int {
	return len(stmt) + 1
}
