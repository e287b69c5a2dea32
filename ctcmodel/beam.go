package ctcmodel

import (
	"math"
	"sort"
	"strconv"
)

// DefaultBeamWidth is the beam width used when a model
// does not specify one.
const DefaultBeamWidth = 100

// BeamSearch runs a CTC prefix beam search and returns the
// most likely labeling.
//
// Each frame stores log probabilities, with the blank
// symbol last.
// Repeated labels are merged unless a blank separates
// them.
// A width less than 1 is treated as 1.
func BeamSearch(frames [][]float64, width int) []int {
	if width < 1 {
		width = 1
	}
	beam := []*prefix{{Label: []int{}, Prob: labelProb{Blank: 0, NoBlank: math.Inf(-1)}}}
	for _, frame := range frames {
		blank := frame[len(frame)-1]
		next := map[string]*prefix{}
		extend := func(label []int, key string) *prefix {
			if p, ok := next[key]; ok {
				return p
			}
			p := &prefix{Label: label, Key: key, Prob: zeroLabelProb()}
			next[key] = p
			return p
		}

		for _, p := range beam {
			total := p.Prob.Total()

			same := extend(p.Label, p.Key)
			same.Prob.Blank = addLogs(same.Prob.Blank, total+blank)
			if len(p.Label) > 0 {
				last := p.Label[len(p.Label)-1]
				same.Prob.NoBlank = addLogs(same.Prob.NoBlank, p.Prob.NoBlank+frame[last])
			}

			for label, prob := range frame[:len(frame)-1] {
				extended := make([]int, len(p.Label)+1)
				copy(extended, p.Label)
				extended[len(p.Label)] = label
				ext := extend(extended, p.Key+strconv.Itoa(label)+",")
				if len(p.Label) > 0 && p.Label[len(p.Label)-1] == label {
					ext.Prob.NoBlank = addLogs(ext.Prob.NoBlank, p.Prob.Blank+prob)
				} else {
					ext.Prob.NoBlank = addLogs(ext.Prob.NoBlank, total+prob)
				}
			}
		}

		beam = make([]*prefix, 0, len(next))
		for _, p := range next {
			beam = append(beam, p)
		}
		sort.Sort(prefixSorter(beam))
		if len(beam) > width {
			beam = beam[:width]
		}
	}
	return beam[0].Label
}

// BestPath decodes greedily by taking the most likely
// symbol at each frame, merging repeats and dropping
// blanks.
func BestPath(frames [][]float64) []int {
	res := []int{}
	last := -1
	for _, frame := range frames {
		best := 0
		for i, x := range frame {
			if x > frame[best] {
				best = i
			}
		}
		if best != last && best != len(frame)-1 {
			res = append(res, best)
		}
		last = best
	}
	return res
}

type prefix struct {
	Label []int
	Key   string
	Prob  labelProb
}

// labelProb stores the log probability of a labeling,
// split up by whether or not the last frame was a blank.
type labelProb struct {
	Blank   float64
	NoBlank float64
}

func zeroLabelProb() labelProb {
	return labelProb{Blank: math.Inf(-1), NoBlank: math.Inf(-1)}
}

func (l labelProb) Total() float64 {
	return addLogs(l.Blank, l.NoBlank)
}

// prefixSorter sorts prefixes from most to least probable.
// Ties are broken by label so the search is deterministic.
type prefixSorter []*prefix

func (p prefixSorter) Len() int {
	return len(p)
}

func (p prefixSorter) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

func (p prefixSorter) Less(i, j int) bool {
	pi, pj := p[i].Prob.Total(), p[j].Prob.Total()
	if pi != pj {
		return pi > pj
	}
	return p[i].Key < p[j].Key
}

// addLogs adds two numbers in the log domain.
func addLogs(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	} else if math.IsInf(b, -1) {
		return a
	}
	normalizer := math.Max(a, b)
	return math.Log(math.Exp(a-normalizer)+math.Exp(b-normalizer)) + normalizer
}
