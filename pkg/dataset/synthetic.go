package dataset

import (
	"math/rand"
	"strconv"
)

// Parity returns rows (i, i²) labelled i % 2 for i in [0, n)
func Parity(n int) *Dataset {
	ds := &Dataset{
		Name:   "parity",
		Header: []string{"x", "x_squared", "parity"},
	}
	for i := 0; i < n; i++ {
		ds.Inputs = append(ds.Inputs, []string{strconv.Itoa(i), strconv.Itoa(i * i)})
		ds.Outputs = append(ds.Outputs, strconv.Itoa(i%2))
	}
	return ds
}

// Clusters returns two overlapping groups of integer points: half drawn from
// [0, 40] labelled 0 and half from [20, 60] labelled 1
func Clusters(n, features int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))

	ds := &Dataset{Name: "clusters"}
	for j := 0; j < features; j++ {
		ds.Header = append(ds.Header, "f"+strconv.Itoa(j))
	}
	ds.Header = append(ds.Header, "label")

	half := n / 2
	for i := 0; i < n; i++ {
		lo, label := 0, "0"
		if i >= half {
			lo, label = 20, "1"
		}
		row := make([]string, features)
		for j := range row {
			row[j] = strconv.Itoa(lo + rng.Intn(41))
		}
		ds.Inputs = append(ds.Inputs, row)
		ds.Outputs = append(ds.Outputs, label)
	}
	return ds
}

var (
	positiveWords = []string{"great", "wonderful", "brilliant", "loved", "excellent", "moving", "superb", "charming"}
	negativeWords = []string{"boring", "awful", "terrible", "waste", "dull", "poor", "worst", "mess"}
	neutralWords  = []string{"film", "movie", "story", "actor", "scene", "plot", "director", "ending"}
)

// Reviews returns short labelled documents for text classification demos.
// Each row has a single "text" feature.
func Reviews(n int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))

	ds := &Dataset{
		Name:   "reviews",
		Header: []string{"text", "sentiment"},
	}
	for i := 0; i < n; i++ {
		words, label := positiveWords, "positive"
		if i%2 == 1 {
			words, label = negativeWords, "negative"
		}

		text := "the"
		for k := 0; k < 6; k++ {
			if rng.Intn(3) == 0 {
				text += " " + words[rng.Intn(len(words))]
			} else {
				text += " " + neutralWords[rng.Intn(len(neutralWords))]
			}
		}
		text += " " + words[rng.Intn(len(words))]

		ds.Inputs = append(ds.Inputs, []string{text})
		ds.Outputs = append(ds.Outputs, label)
	}
	return ds
}
