package headinject

// LocationKind classifies the result of scanning one chunk.
type LocationKind uint8

const (
	// LocationNone means nothing was found. A previously reported potential
	// injection point must be dismissed.
	LocationNone LocationKind = iota

	// LocationPotentialFromIndex means a candidate tag starts at Location.Index
	// in the current chunk and is not confirmed yet. A previously reported
	// potential injection point must be dismissed.
	LocationPotentialFromIndex

	// LocationPotentialFromPreviousChunk means the candidate that started in an
	// earlier chunk is still unconfirmed.
	LocationPotentialFromPreviousChunk

	// LocationMatchFromIndex means a confirmed tag starts at Location.Index in
	// the current chunk.
	LocationMatchFromIndex

	// LocationMatchFromPreviousChunk means the candidate that started in an
	// earlier chunk is confirmed.
	LocationMatchFromPreviousChunk
)

// String returns the kind name.
func (k LocationKind) String() string {
	switch k {
	case LocationNone:
		return "None"
	case LocationPotentialFromIndex:
		return "PotentialFromIndex"
	case LocationPotentialFromPreviousChunk:
		return "PotentialFromPreviousChunk"
	case LocationMatchFromIndex:
		return "MatchFromIndex"
	case LocationMatchFromPreviousChunk:
		return "MatchFromPreviousChunk"
	default:
		return "Unknown"
	}
}

// Location is the outcome of Locator.Scan. Index is only meaningful for the
// FromIndex kinds.
type Location struct {
	Kind  LocationKind
	Index int
}

// tagBytes holds the expected characters of the closing head tag, indexed by
// scan position.
const tagBytes = "</head>"

// Locator finds the injection point, the start of the first `</head>` tag, in
// a document delivered as a sequence of chunks.
//
// Matching is equivalent to the regular expression `<\/\s*head\s*>` with case
// folding: whitespace is accepted only before "head" and before ">".
//
// The zero value is ready to use. Scan never allocates.
type Locator struct {
	// pos counts matched characters of tagBytes, 0 through 6.
	// 0 means we are looking for '<', 1 for '/', 2 for 'h', and so on.
	pos uint8
}

// Scan classifies chunk against the state carried from previous chunks.
//
// Only the net effect of the chunk is reported: the last live candidate, or
// the first confirmed match. Bytes following a confirmed match are not
// inspected.
func (l *Locator) Scan(chunk []byte) Location {
	loc := Location{Kind: LocationNone}
	if l.pos > 0 {
		loc.Kind = LocationPotentialFromPreviousChunk
	}

	for i, b := range chunk {
		if l.pos > 1 && 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}

		switch {
		case b == '<':
			// Any '<' starts a new candidate.
			l.pos = 1
			loc = Location{Kind: LocationPotentialFromIndex, Index: i}

		case l.pos >= 1 && l.pos <= 5 && b == tagBytes[l.pos]:
			l.pos++

		case l.pos == 6 && b == '>':
			l.pos = 0
			switch loc.Kind {
			case LocationPotentialFromPreviousChunk:
				loc.Kind = LocationMatchFromPreviousChunk
			case LocationPotentialFromIndex:
				loc.Kind = LocationMatchFromIndex
			default:
				panic("headinject: locator matched without a candidate")
			}
			return loc

		case (l.pos == 2 || l.pos == 6) && isSpace(b):

		default:
			l.pos = 0
			loc = Location{Kind: LocationNone}
		}
	}

	return loc
}

// Pending reports whether a candidate tag is partially matched.
func (l *Locator) Pending() bool {
	return l.pos > 0
}

// Reset clears any partial match.
func (l *Locator) Reset() {
	l.pos = 0
}

// isSpace reports ASCII whitespace: space, tab, line feed, form feed and
// carriage return.
func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}
