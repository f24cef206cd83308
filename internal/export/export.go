package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/Dan9191/library-service/internal/models"
)

// ContentType is the media type of the catalog document.
const ContentType = "application/xml; charset=utf-8"

// CatalogXML renders books as an XML catalog document
func CatalogXML(books []models.Book, generatedAt time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	catalog := doc.CreateElement("catalog")
	catalog.CreateAttr("generated", generatedAt.UTC().Format(time.RFC3339))
	catalog.CreateAttr("count", strconv.Itoa(len(books)))

	for _, b := range books {
		el := catalog.CreateElement("book")
		el.CreateAttr("id", strconv.FormatInt(b.ID, 10))
		el.CreateElement("title").SetText(b.Title)
		el.CreateElement("author").SetText(b.Author)
		el.CreateElement("isbn").SetText(b.ISBN)
		el.CreateElement("publishedDate").SetText(b.PublishedDate.String())
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render catalog: %w", err)
	}
	return out, nil
}
