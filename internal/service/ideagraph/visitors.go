package ideagraph

import (
	"sort"
	"strings"

	models "agora/internal/domain/models/ideagraph"
	graphSvc "agora/internal/domain/services/ideagraph"
)

// ListVisitor collects ideas in visit order.
type ListVisitor struct {
	IdentityFold[*models.Idea, struct{}]
	IncludeHidden bool
	Ideas         []*models.Idea
}

// Visit appends the idea. Hidden ideas and their subtrees are cut unless IncludeHidden is set.
func (v *ListVisitor) Visit(idea *models.Idea, _ int, _ struct{}) (struct{}, error) {
	if idea.Hidden && !v.IncludeHidden {
		return struct{}{}, ErrSkipChildren
	}
	v.Ideas = append(v.Ideas, idea)
	return struct{}{}, nil
}

// WordCountVisitor aggregates word frequencies over an id-only traversal.
// Texts holds the prefetched title and description of each idea; posts of
// the start node (level 0) are counted PostWeight times.
type WordCountVisitor struct {
	IdentityFold[string, struct{}]
	Texts      map[string]string
	Posts      map[string][]string
	PostWeight int

	counts map[string]int
}

// NewWordCountVisitor creates a visitor over prefetched texts and posts
func NewWordCountVisitor(texts map[string]string, posts map[string][]string) *WordCountVisitor {
	return &WordCountVisitor{
		Texts:      texts,
		Posts:      posts,
		PostWeight: 1,
		counts:     map[string]int{},
	}
}

// Visit counts the words of one idea
func (v *WordCountVisitor) Visit(id string, level int, _ struct{}) (struct{}, error) {
	v.add(v.Texts[id], 1)
	if level == 0 {
		for _, post := range v.Posts[id] {
			v.add(post, v.PostWeight)
		}
	}
	return struct{}{}, nil
}

func (v *WordCountVisitor) add(text string, weight int) {
	for _, word := range Tokenize(text) {
		v.counts[word] += weight
	}
}

// MostCommonWords returns the n most frequent words, ties broken alphabetically.
// n <= 0 returns every word.
func (v *WordCountVisitor) MostCommonWords(n int) []graphSvc.WordCount {
	out := make([]graphSvc.WordCount, 0, len(v.counts))
	for word, count := range v.counts {
		out = append(out, graphSvc.WordCount{Word: word, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// OutlineVisitor renders an id-only traversal as an ASCII tree.
//
//	Root
//	├── A
//	│   └── B
//	└── C
type OutlineVisitor struct {
	Labels   map[string]string
	MaxDepth int // 0 means unlimited
}

// Visit returns the node's own line
func (v *OutlineVisitor) Visit(id string, level int, _ []string) ([]string, error) {
	label := v.Labels[id]
	if label == "" {
		label = id
	}
	if v.MaxDepth > 0 && level >= v.MaxDepth {
		return []string{label + " …"}, ErrSkipChildren
	}
	return []string{label}, nil
}

// Fold indents each child's block under the node's line
func (v *OutlineVisitor) Fold(_ string, _ int, own []string, children []ChildResult[[]string]) []string {
	lines := append([]string{}, own...)
	for i, child := range children {
		last := i == len(children)-1
		branch, cont := "├── ", "│   "
		if last {
			branch, cont = "└── ", "    "
		}
		for j, line := range child.Result {
			if j == 0 {
				lines = append(lines, branch+line)
			} else {
				lines = append(lines, cont+line)
			}
		}
	}
	return lines
}

// Render joins the folded lines
func (v *OutlineVisitor) Render(lines []string) string {
	return strings.Join(lines, "\n")
}
