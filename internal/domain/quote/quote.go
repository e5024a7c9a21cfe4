package quote

import "time"

// DateLayout is the format of DateFetched and of every per-day key in the store.
const DateLayout = "2006-01-02"

// Quote is the quote of one calendar day.
// Corresponds to the 'quotes' table; DateFetched is unique.
type Quote struct {
	ID          int64
	Text        string
	Author      string
	DateFetched string
}

// DateOf returns the local calendar date of t in DateLayout.
func DateOf(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// Deliverable reports whether the quote carries both text and author.
func (q *Quote) Deliverable() bool {
	return q != nil && q.Text != "" && q.Author != ""
}
