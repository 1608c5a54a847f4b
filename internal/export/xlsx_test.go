package export

import (
	"bytes"
	"testing"

	"flagman/parser/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []*domain.ProductRecord {
	return []*domain.ProductRecord{
		{
			Code:  "FL-1",
			Brand: "Flagman",
			Price: "999",

			TitleUA:            "Вудилище",
			TitleRU:            "Удилище",
			DescriptionPlainUA: "опис",
			DescriptionRichUA:  "<p>опис</p>",
			DescriptionPlainRU: "описание",
			DescriptionRichRU:  "<p>описание</p>",

			Images: []string{"img1.jpg", "img2.jpg"},

			AttributesUA: []domain.Attribute{{Key: "Довжина", Value: "2.7 м"}},
			AttributesRU: []domain.Attribute{{Key: "Длина", Value: "2.7 м"}},

			LinkUA: "https://flagman.ua/p1",
			LinkRU: "https://flagman.ua/ru/p1",
		},
		{
			Code:  "FL-2",
			Brand: "Salmo",
			Price: "499",

			TitleUA: "Котушка",
			TitleRU: "Катушка",

			AttributesUA: []domain.Attribute{
				{Key: "Довжина", Value: "3.0 м"},
				{Key: "Вага", Value: "210 г"},
			},

			LinkUA: "https://flagman.ua/p2",
			LinkRU: "https://flagman.ua/ru/p2",
		},
	}
}

func writeAndReopen(t *testing.T, records []*domain.ProductRecord, opts Options) [][]string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, records, opts))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestWriteHeaderAndRows(t *testing.T) {
	rows := writeAndReopen(t, sampleRecords(), Options{})
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, []string{"code", "brand", "price", "title (UA)", "title (RU)", "description (UA)", "description (RU)"}, header[:7])
	assert.Equal(t, "image_1", header[7])
	assert.Equal(t, "image_15", header[21])
	// Attribute columns in first-seen order across records, links last
	assert.Equal(t, []string{"Довжина (UA)", "Длина (RU)", "Вага (UA)", "link (UA)", "link (RU)"}, header[22:])

	col := func(row []string, name string) string {
		for i, h := range header {
			if h == name && i < len(row) {
				return row[i]
			}
		}
		return ""
	}

	assert.Equal(t, "FL-1", col(rows[1], "code"))
	assert.Equal(t, "опис", col(rows[1], "description (UA)"))
	assert.Equal(t, "img2.jpg", col(rows[1], "image_2"))
	assert.Equal(t, "2.7 м", col(rows[1], "Довжина (UA)"))
	assert.Equal(t, "https://flagman.ua/ru/p1", col(rows[1], "link (RU)"))

	assert.Equal(t, "FL-2", col(rows[2], "code"))
	assert.Equal(t, "3.0 м", col(rows[2], "Довжина (UA)"))
	assert.Equal(t, "210 г", col(rows[2], "Вага (UA)"))
	assert.Empty(t, col(rows[2], "image_1"))
}

func TestWriteRichDescriptions(t *testing.T) {
	rows := writeAndReopen(t, sampleRecords(), Options{RichDescription: true})
	header := rows[0]

	for i, h := range header {
		if h == "description (UA)" {
			assert.Equal(t, "<p>опис</p>", rows[1][i])
		}
		if h == "description (RU)" {
			assert.Equal(t, "<p>описание</p>", rows[1][i])
		}
	}
}
