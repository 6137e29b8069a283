package stub

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// ChunkWords is the default window size. Windows start half a window apart.
const ChunkWords = 500

// ChunkText splits text into overlapping windows of size words
func ChunkText(text string, size int) []string {
	if size <= 0 {
		size = ChunkWords
	}
	stride := max(size/2, 1)
	words := strings.Fields(text)

	var chunks []string
	for i := 0; i < len(words); i += stride {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// Index holds the document chunks of every bot for term-overlap search
type Index struct {
	mu     sync.RWMutex
	chunks map[string][]string
	order  []string
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{chunks: make(map[string][]string)}
}

// Set replaces the chunks of botID with those cut from docs
func (x *Index) Set(botID string, docs []StoredDocument) {
	var chunks []string
	for _, doc := range docs {
		chunks = append(chunks, ChunkText(string(doc.Content), ChunkWords)...)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.chunks[botID]; !ok {
		x.order = append(x.order, botID)
	}
	x.chunks[botID] = chunks
}

// Len returns the total number of chunks
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	n := 0
	for _, c := range x.chunks {
		n += len(c)
	}
	return n
}

// Search returns up to k chunks of botID ranked by query-term overlap
func (x *Index) Search(botID, query string, k int) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return rank(x.chunks[botID], query, k)
}

// SearchAll ranks the chunks of every bot
func (x *Index) SearchAll(query string, k int) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var all []string
	for _, id := range x.order {
		all = append(all, x.chunks[id]...)
	}
	return rank(dedupe(all), query, k)
}

// dedupe drops chunks whose content hash was already seen, keeping the first.
func dedupe(chunks []string) []string {
	seen := make(map[[sha256.Size]byte]bool, len(chunks))
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		sum := sha256.Sum256([]byte(chunk))
		if seen[sum] {
			continue
		}
		seen[sum] = true
		out = append(out, chunk)
	}
	return out
}

type scored struct {
	chunk string
	score int
}

// rank orders chunks by how many distinct query terms they contain.
// Chunks sharing no term with the query are dropped; ties keep document order.
func rank(chunks []string, query string, k int) []string {
	terms := tokenize(query)
	if len(terms) == 0 || k <= 0 {
		return []string{}
	}

	var hits []scored
	for _, chunk := range chunks {
		words := tokenize(chunk)
		score := 0
		for term := range terms {
			if _, ok := words[term]; ok {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{chunk: chunk, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	out := make([]string, 0, min(k, len(hits)))
	for i := 0; i < len(hits) && i < k; i++ {
		out = append(out, hits[i].chunk)
	}
	return out
}

func tokenize(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) > 1 {
			set[w] = struct{}{}
		}
	}
	return set
}

// FormatAnswer renders chunks as a documentation answer
func FormatAnswer(chunks []string) string {
	if len(chunks) == 0 {
		return "I could not find anything about that in the documentation."
	}
	var b strings.Builder
	b.WriteString("Based on the documentation:\n\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "Reference %d:\n%s\n\n", i+1, strings.TrimSpace(chunk))
	}
	return strings.TrimRight(b.String(), "\n")
}
