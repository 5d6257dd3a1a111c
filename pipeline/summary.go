package pipeline

// Notes attached to payloads that carry no price.
const (
	NoteUnavailable = "This product appears to be unavailable or out of stock, so no current price is shown."
	NoteBlockedAI   = "The store blocked automated access and AI extraction failed, so the price could not be extracted."
	NoteBlocked     = "The store blocked automated access, so the price could not be extracted."
	NoteAIFailed    = "The page had no readable price and AI extraction failed, so the price could not be extracted."
	NoteGeneric     = "The price could not be extracted from this page."
)

// Signals are what the pipeline accumulated before reaching a price-less
// terminal payload.
type Signals struct {
	Blocked     bool
	Unavailable bool
	AIErrors    []string
}

// Summarize picks exactly one note. Unavailable wins over blocked with
// AI errors, then blocked alone, then AI errors alone.
func Summarize(s Signals) string {
	switch {
	case s.Unavailable:
		return NoteUnavailable
	case s.Blocked && len(s.AIErrors) > 0:
		return NoteBlockedAI
	case s.Blocked:
		return NoteBlocked
	case len(s.AIErrors) > 0:
		return NoteAIFailed
	default:
		return NoteGeneric
	}
}
