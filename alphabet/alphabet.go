// Package alphabet converts transcripts to and from the
// label IDs used as CTC targets.
//
// The alphabet has 28 classes: the letters a through z,
// a space, and the CTC blank.
// The blank is always the last class, which is the
// layout anyctc expects for its output vectors.
package alphabet

import (
	"fmt"
	"strings"
)

const (
	// Space is the label ID of the space character.
	Space int = 'z' - 'a' + 1

	// Blank is the label ID reserved for the CTC blank.
	// It never appears in the output of Encode.
	Blank int = Space + 1

	// NumClasses is the number of outputs a network must
	// produce per timestep.
	NumClasses int = Blank + 1
)

// An EncodingError is returned by Encode when a transcript
// contains a character outside of {a-z, space}.
type EncodingError struct {
	Rune   rune
	Offset int
}

// Error returns a description of the bad character.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode transcript: unsupported character %q at offset %d",
		e.Rune, e.Offset)
}

// Encode maps a transcript to label IDs.
func Encode(transcript string) ([]int, error) {
	res := make([]int, 0, len(transcript))
	for i, r := range transcript {
		switch {
		case r >= 'a' && r <= 'z':
			res = append(res, int(r-'a'))
		case r == ' ':
			res = append(res, Space)
		default:
			return nil, &EncodingError{Rune: r, Offset: i}
		}
	}
	return res, nil
}

// MustEncode is like Encode, but it panics on error.
func MustEncode(transcript string) []int {
	res, err := Encode(transcript)
	if err != nil {
		panic(err)
	}
	return res
}

// Decode maps label IDs back to a transcript.
//
// IDs that do not name a character, such as Blank or the
// -1 fill value of a densified sparse batch, are dropped.
func Decode(ids []int) string {
	var res strings.Builder
	for _, id := range ids {
		switch {
		case id >= 0 && id < Space:
			res.WriteRune(rune('a' + id))
		case id == Space:
			res.WriteRune(' ')
		}
	}
	return res.String()
}
