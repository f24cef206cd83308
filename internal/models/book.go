package models

// Book represents a catalog record
type Book struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	PublishedDate Date   `json:"publishedDate"`
}

// BookQuery describes one page of a filtered book listing.
// An empty Search matches every book.
type BookQuery struct {
	Search string
	Limit  int
	Offset int
}
