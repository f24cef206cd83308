package export

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/library-service/internal/models"
)

func TestCatalogXML(t *testing.T) {
	books := []models.Book{
		{ID: 1, Title: "Clean Code", Author: "Robert C. Martin", ISBN: "9780132350884", PublishedDate: models.NewDate(2008, time.August, 1)},
		{ID: 2, Title: "Tom & Jerry <3", Author: "Hanna", ISBN: "1", PublishedDate: models.NewDate(1940, time.February, 10)},
	}
	at := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

	raw, err := CatalogXML(books, at)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(raw))

	root := doc.SelectElement("catalog")
	require.NotNil(t, root)
	assert.Equal(t, "2", root.SelectAttrValue("count", ""))
	assert.Equal(t, "2026-10-17T08:00:00Z", root.SelectAttrValue("generated", ""))

	els := doc.FindElements("//catalog/book")
	require.Len(t, els, 2)
	assert.Equal(t, "1", els[0].SelectAttrValue("id", ""))
	assert.Equal(t, "Clean Code", els[0].FindElement("./title").Text())
	assert.Equal(t, "2008-08-01", els[0].FindElement("./publishedDate").Text())
	assert.Equal(t, "Tom & Jerry <3", els[1].FindElement("./title").Text())
}

func TestCatalogXML_Empty(t *testing.T) {
	raw, err := CatalogXML(nil, time.Now())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(raw))
	assert.Equal(t, "0", doc.SelectElement("catalog").SelectAttrValue("count", ""))
	assert.Empty(t, doc.FindElements("//book"))
}
