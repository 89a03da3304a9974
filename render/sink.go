package render

// Row is one rendered entry of a sink: a table row or a list item.
type Row struct {
	Class string
	Cells []string
	// Href, when set, links the first cell
	Href string
}

// Sink is a presentation target for an ordered list of rows.
// Both methods clear previous contents first, so repeating a call is idempotent.
type Sink interface {
	Replace(rows []Row)
	ShowMessage(text string)
}

// MarketSinks groups the three targets the movers pipeline writes to.
type MarketSinks struct {
	Gainers Sink
	Losers  Sink
	Breadth Sink
}

// ShowMessage writes the same text into every sink.
func (s MarketSinks) ShowMessage(text string) {
	for _, sink := range []Sink{s.Gainers, s.Losers, s.Breadth} {
		if sink != nil {
			sink.ShowMessage(text)
		}
	}
}

// MemorySink keeps the last written contents in memory.
type MemorySink struct {
	Rows    []Row
	Message string
	Writes  int
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Replace(rows []Row) {
	s.Rows = append([]Row{}, rows...)
	s.Message = ""
	s.Writes++
}

func (s *MemorySink) ShowMessage(text string) {
	s.Rows = nil
	s.Message = text
	s.Writes++
}
