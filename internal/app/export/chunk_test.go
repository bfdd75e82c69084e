package export

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk(t *testing.T) {
	t.Parallel()

	stmt := func(n int) string { return strings.Repeat("x", n-1) } // size n with separator

	tests := []struct {
		name       string
		statements []string
		max        int
		wantSizes  []int
	}{
		{name: "empty", statements: nil, max: 10, wantSizes: nil},
		{name: "fits in one", statements: []string{stmt(3), stmt(3), stmt(4)}, max: 10, wantSizes: []int{3}},
		{name: "exact bound", statements: []string{stmt(5), stmt(5), stmt(5)}, max: 10, wantSizes: []int{2, 1}},
		{name: "one over", statements: []string{stmt(5), stmt(6)}, max: 10, wantSizes: []int{1, 1}},
		{name: "oversize alone", statements: []string{stmt(2), stmt(50), stmt(2)}, max: 10, wantSizes: []int{1, 1, 1}},
		{name: "oversize first", statements: []string{stmt(50), stmt(2), stmt(2)}, max: 10, wantSizes: []int{1, 2}},
		{name: "no bound", statements: []string{stmt(50), stmt(50)}, max: 0, wantSizes: []int{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			chunks := Chunk(tt.statements, tt.max)
			var sizes []int
			for _, c := range chunks {
				sizes = append(sizes, len(c))
			}
			assert.Equal(t, tt.wantSizes, sizes)
		})
	}
}

func TestChunk_Bound(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		maxBytes := 20 + rng.Intn(200)
		statements := make([]string, rng.Intn(60))
		for i := range statements {
			statements[i] = strings.Repeat("s", rng.Intn(maxBytes*2))
		}

		chunks := Chunk(statements, maxBytes)

		var flat []string
		for i, c := range chunks {
			require.NotEmpty(t, c, "round %d chunk %d is empty", round, i)
			if len(c) > 1 {
				assert.LessOrEqual(t, ChunkSize(c), maxBytes, "round %d chunk %d", round, i)
			}
			if i > 0 {
				// The previous chunk was closed only because this chunk's first
				// statement did not fit.
				assert.Greater(t, ChunkSize(chunks[i-1])+statementSize(c[0]), maxBytes)
			}
			flat = append(flat, c...)
		}
		if len(statements) == 0 {
			assert.Empty(t, flat)
		} else {
			assert.Equal(t, statements, flat, "round %d: chunking must keep order and content", round)
		}
	}
}
