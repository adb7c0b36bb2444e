package kb

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// SplitterConfig bounds both split stages in runes. Coarse blocks follow the
// document's section structure; fine chunks are the embedding unit.
type SplitterConfig struct {
	ChunkSize        int
	ChunkOverlap     int
	FineChunkSize    int
	FineChunkOverlap int
}

// Piece is one splitter output. Overlap counts the runes at the start of
// Text that were injected from the preceding piece for retrieval continuity;
// stripping them and concatenating what remains reconstructs the source.
type Piece struct {
	Text    string
	Overlap int
}

type Splitter struct {
	cfg SplitterConfig
}

func NewSplitter(cfg SplitterConfig) *Splitter {
	return &Splitter{cfg: cfg}
}

// Split performs the two-stage split: slice the document at top-level
// markdown headings and pack the sections into coarse blocks, then split
// each block on line breaks into fine chunks with intra-block overlap.
func (s *Splitter) Split(doc string) []Piece {
	if doc == "" {
		return nil
	}
	blocks := s.coarseSplit(doc)
	var pieces []Piece
	for _, block := range blocks {
		fine := packUnits(splitLines(block.body), s.cfg.FineChunkSize, s.cfg.FineChunkOverlap)
		if len(fine) > 0 && block.prefix != "" {
			fine[0].Text = block.prefix + fine[0].Text
			fine[0].Overlap += len([]rune(block.prefix))
		}
		pieces = append(pieces, fine...)
	}
	return pieces
}

type coarseBlock struct {
	// prefix is overlap carried from the previous block, body is new content.
	prefix string
	body   string
}

func (s *Splitter) coarseSplit(doc string) []coarseBlock {
	sections := splitSections(doc)
	var blocks []coarseBlock
	var current []string
	var currentLen int
	flush := func() {
		if len(current) == 0 {
			return
		}
		body := strings.Join(current, "")
		prefix := ""
		if len(blocks) > 0 && s.cfg.ChunkOverlap > 0 {
			prev := blocks[len(blocks)-1]
			prefix = tailLines(prev.prefix+prev.body, s.cfg.ChunkOverlap)
		}
		blocks = append(blocks, coarseBlock{prefix: prefix, body: body})
		current = nil
		currentLen = 0
	}
	for _, section := range sections {
		n := len([]rune(section))
		if currentLen > 0 && currentLen+n > s.cfg.ChunkSize {
			flush()
		}
		current = append(current, section)
		currentLen += n
		// an oversized section stands alone; the fine stage bounds it
		if currentLen > s.cfg.ChunkSize {
			flush()
		}
	}
	flush()
	return blocks
}

// splitSections slices the raw document at H1/H2 heading offsets located via
// the markdown AST. Slicing by byte offset keeps the split lossless:
// concatenating the sections yields the document unchanged.
func splitSections(doc string) []string {
	source := []byte(doc)
	parser := goldmark.New().Parser()
	root := parser.Parse(text.NewReader(source))

	var offsets []int
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		heading, ok := node.(*ast.Heading)
		if !ok || heading.Level > 2 || heading.Lines().Len() == 0 {
			continue
		}
		// the segment starts after the "#" marker; back up to the line start
		start := heading.Lines().At(0).Start
		lineStart := strings.LastIndexByte(doc[:start], '\n') + 1
		if lineStart > 0 {
			offsets = append(offsets, lineStart)
		}
	}

	var sections []string
	prev := 0
	for _, off := range offsets {
		if off <= prev {
			continue
		}
		sections = append(sections, doc[prev:off])
		prev = off
	}
	sections = append(sections, doc[prev:])
	return sections
}

// splitLines splits on line breaks keeping each terminator with its line, so
// the units concatenate back to the input.
func splitLines(block string) []string {
	var units []string
	start := 0
	for i := 0; i < len(block); i++ {
		if block[i] == '\n' {
			units = append(units, block[start:i+1])
			start = i + 1
		}
	}
	if start < len(block) {
		units = append(units, block[start:])
	}
	return units
}

// packUnits greedily packs units into pieces of at most size runes, then
// injects up to overlap runes of whole trailing units from each piece into
// the start of the next.
func packUnits(units []string, size, overlap int) []Piece {
	var groups [][]string
	var current []string
	var currentLen int
	for _, unit := range units {
		n := len([]rune(unit))
		if currentLen > 0 && currentLen+n > size {
			groups = append(groups, current)
			current = nil
			currentLen = 0
		}
		current = append(current, unit)
		currentLen += n
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	pieces := make([]Piece, 0, len(groups))
	for i, group := range groups {
		body := strings.Join(group, "")
		prefix := ""
		if i > 0 && overlap > 0 {
			prefix = tailUnits(groups[i-1], overlap)
		}
		pieces = append(pieces, Piece{
			Text:    prefix + body,
			Overlap: len([]rune(prefix)),
		})
	}
	return pieces
}

// tailUnits returns the longest run of trailing whole units within limit
// runes.
func tailUnits(units []string, limit int) string {
	total := 0
	start := len(units)
	for i := len(units) - 1; i >= 0; i-- {
		n := len([]rune(units[i]))
		if total+n > limit {
			break
		}
		total += n
		start = i
	}
	return strings.Join(units[start:], "")
}

// tailLines returns the trailing whole lines of s within limit runes.
func tailLines(s string, limit int) string {
	return tailUnits(splitLines(s), limit)
}
