package ctcmodel

import (
	"math"
	"reflect"
	"testing"
)

func TestBeamSearch(t *testing.T) {
	var inputs = [][][]float64{
		{
			{-9.21034037197618, -0.000100005000333347},
			{-0.105360515657826, -2.302585092994046},
			{-9.21034037197618, -0.000100005000333347},
			{-0.105360515657826, -2.302585092994046},
			{-9.21034037197618, -0.000100005000333347},
			{-9.21034037197618, -0.000100005000333347},
		},
		{
			{-1.38155105579643e+01, -1.38155105579643e+01, -2.00000199994916e-06},
			// Neither frame favors label 0, but together
			// they make it likely to appear.
			{-0.916290731874155, -13.815510557964274, -0.510827290434046},
			{-0.916290731874155, -13.815510557964274, -0.510827290434046},
			{-1.38155105579643e+01, -1.38155105579643e+01, -2.00000199994916e-06},
			{-1.609437912434100, -0.693147180559945, -1.203972804325936},
		},
		{
			{-1.38155105579643e+01, -1.38155105579643e+01, -2.00000199994916e-06},
			{-0.916290731874155, -13.815510557964274, -0.510827290434046},
			{-1.38155105579643e+01, -1.38155105579643e+01, -2.00000199994916e-06},
			{-1.609437912434100, -0.693147180559945, -1.203972804325936},
		},
		{
			{-0.916290731874155, -13.815510557964274, -0.510827290434046},
			{-1.38155105579643e+01, -1.38155105579643e+01, -2.00000199994916e-06},
			{-1.609437912434100, -0.693147180559945, -1.203972804325936},
		},
	}
	var expected = [][]int{
		{0, 0},
		{0, 1},
		{1},
		{1},
	}
	for i, in := range inputs {
		actual := BeamSearch(in, DefaultBeamWidth)
		if !reflect.DeepEqual(actual, expected[i]) {
			t.Errorf("sequence %d: expected %v but got %v", i, expected[i], actual)
		}
	}
}

func TestBeamSearchSummedPaths(t *testing.T) {
	frames := logFrames([][]float64{
		{0.4, 0.6},
		{0.4, 0.6},
	})
	if actual := BestPath(frames); len(actual) != 0 {
		t.Errorf("best path should be empty but got %v", actual)
	}
	if actual := BeamSearch(frames, 10); !reflect.DeepEqual(actual, []int{0}) {
		t.Errorf("expected [0] but got %v", actual)
	}
}

func TestBeamSearchPeaked(t *testing.T) {
	frames := logFrames([][]float64{
		{0.97, 0.01, 0.01, 0.01},
		{0.97, 0.01, 0.01, 0.01},
		{0.01, 0.01, 0.01, 0.97},
		{0.97, 0.01, 0.01, 0.01},
		{0.01, 0.01, 0.97, 0.01},
		{0.01, 0.97, 0.01, 0.01},
		{0.01, 0.01, 0.01, 0.97},
	})
	expected := []int{0, 0, 2, 1}
	if actual := BestPath(frames); !reflect.DeepEqual(actual, expected) {
		t.Errorf("best path: expected %v but got %v", expected, actual)
	}
	for _, width := range []int{0, 1, 5, 100} {
		if actual := BeamSearch(frames, width); !reflect.DeepEqual(actual, expected) {
			t.Errorf("width %d: expected %v but got %v", width, expected, actual)
		}
	}
}

func TestBeamSearchEmpty(t *testing.T) {
	if actual := BeamSearch(nil, 10); actual == nil || len(actual) != 0 {
		t.Errorf("expected empty labeling but got %v", actual)
	}
	if actual := BestPath(nil); actual == nil || len(actual) != 0 {
		t.Errorf("expected empty labeling but got %v", actual)
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		decoded  [][]int
		ref      [][]int
		expected float64
	}{
		{[][]int{{1, 2, 3}}, [][]int{{1, 2, 3}}, 0},
		{[][]int{{1, 3}}, [][]int{{1, 2, 3}}, 1.0 / 3},
		{[][]int{{}}, [][]int{{1, 2, 3, 4}}, 1},
		{[][]int{{5, 5, 5, 5, 5, 5, 5, 5}}, [][]int{{1, 2, 3, 4}}, 2},
		{[][]int{{1, 2}, {4}}, [][]int{{1, 2}, {3, 4}}, 0.25},
		{[][]int{{}}, [][]int{{}}, 0},
		{nil, nil, 0},
	}
	for i, test := range tests {
		actual := EditDistance(test.decoded, test.ref)
		if math.Abs(actual-test.expected) > 1e-9 {
			t.Errorf("test %d: expected %f but got %f", i, test.expected, actual)
		}
	}
	if !math.IsInf(EditDistance([][]int{{1}}, [][]int{{}}), 1) {
		t.Error("expected infinite distance for an empty reference")
	}
}

func logFrames(probs [][]float64) [][]float64 {
	res := make([][]float64, len(probs))
	for i, frame := range probs {
		res[i] = make([]float64, len(frame))
		for j, x := range frame {
			res[i][j] = math.Log(x)
		}
	}
	return res
}
