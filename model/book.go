// model/book.go
package model

// Book mirrors a row in the books table. Stock is the total number of
// copies owned, Borrowed the number currently lent out. The invariant
// 0 <= Borrowed <= Stock holds after every committed mutation.
type Book struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Publisher string `json:"publisher"`
	ISBN      string `json:"isbn"`
	Stock     int64  `json:"stock"`
	Borrowed  int64  `json:"borrowed"`
}

// Available is derived, never stored.
func (b Book) Available() int64 { return b.Stock - b.Borrowed }

// RankedBook is a hot-list entry: a book plus its cumulative borrow score.
type RankedBook struct {
	Book  Book  `json:"book"`
	Score int64 `json:"score"`
}

// ActiveUser is one row of the daily activity ranking.
type ActiveUser struct {
	UserID        int64 `json:"user_id"`
	ActivityCount int64 `json:"activity_count"`
}
