package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/pagetext"
)

type stubSource struct {
	text string
	err  error
}

func (s stubSource) PageText(context.Context, string) (PageText, error) {
	return PageText{Text: s.text, Page: 2, Method: "stub"}, s.err
}

func TestFromText(t *testing.T) {
	a := NewAssembler(nil, nil)
	r := a.FromText("invoice-1.pdf", samplePage)

	want := Record{
		Filename:        "invoice-1.pdf",
		OrderNumber:     "404-1234567-7654321",
		OrderDate:       "02.11.2025",
		PlaceOfDelivery: "TAMIL NADU",
		InvoiceNumber:   "IN-KA-2025-0042",
		InvoiceValue:    "₹1,380.00",
		Description:     "Cashew Nuts, 1kg | Premium W320 Whole Cashews",
		HSNCode:         "08013220",
		ASIN:            "B0FW7291VR",
		SKU:             "MS-H2GY-GWJX",
		TransactionID:   "4TrX9KQ2pLm",
		PaymentMode:     "NetBanking",
		DateTime:        "02/11/2025, 12:58:05 hrs",
		ShippingAddress: "Ravi Kumar 12 Lake View Road Chennai, TAMIL NADU, 600042 IN",
	}
	assert.Equal(t, want, r)
}

func TestFromTextIsDeterministic(t *testing.T) {
	a := NewAssembler(nil, nil)
	assert.Equal(t, a.FromText("x.pdf", samplePage), a.FromText("x.pdf", samplePage))
}

func TestFromTextUnmatched(t *testing.T) {
	r := NewAssembler(nil, nil).FromText("blank.pdf", "nothing to see")
	assert.True(t, r.IsEmpty())
	assert.Equal(t, "blank.pdf", r.Filename)
	assert.Len(t, r.Values(), len(Columns))
}

func TestFromDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("page text is extracted", func(t *testing.T) {
		a := NewAssembler(stubSource{text: samplePage}, nil)
		r, err := a.FromDocument(ctx, "/data/in/invoice-9.pdf")
		require.NoError(t, err)
		assert.Equal(t, "invoice-9.pdf", r.Filename)
		assert.Equal(t, "404-1234567-7654321", r.OrderNumber)
	})

	t.Run("failure yields degraded record", func(t *testing.T) {
		cause := errors.New("encrypted")
		a := NewAssembler(stubSource{err: cause}, nil)
		r, err := a.FromDocument(ctx, "/data/in/locked.pdf")
		require.Error(t, err)
		assert.Equal(t, EmptyRecord("locked.pdf"), r)

		var docErr *DocumentError
		require.ErrorAs(t, err, &docErr)
		assert.Equal(t, "/data/in/locked.pdf", docErr.Path)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("no source", func(t *testing.T) {
		r, err := NewAssembler(nil, nil).FromDocument(ctx, "a.pdf")
		assert.Error(t, err)
		assert.Equal(t, "a.pdf", r.Filename)
	})

	t.Run("text file through the page extractor", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scan.txt")
		require.NoError(t, os.WriteFile(path, []byte("cover page\f"+samplePage), 0o644))
		src := NewPageTextAdapter(pagetext.NewExtractor(pagetext.Config{}, nil))
		r, err := NewAssembler(src, nil).FromDocument(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "scan.txt", r.Filename)
		assert.Equal(t, "B0FW7291VR", r.ASIN)
		assert.Equal(t, "IN-KA-2025-0042", r.InvoiceNumber)
	})
}

func TestWithFields(t *testing.T) {
	a := NewAssembler(nil, nil).WithFields([]Field{
		{Column: ColOrderNumber, Patterns: []FieldPattern{rx(`Ref\s*:\s*(\w+)`)}},
	})
	r := a.FromText("f.pdf", "Ref: ABC123\nOrder Number: 1-2-3")
	assert.Equal(t, "ABC123", r.OrderNumber)
	assert.Empty(t, r.InvoiceNumber)
}

func TestRecordColumns(t *testing.T) {
	r := Record{Filename: "a.pdf", ASIN: "B0FW7291VR", ShippingAddress: "addr"}
	values := r.Values()
	require.Len(t, values, len(Columns))
	assert.Equal(t, "a.pdf", values[0])
	assert.Equal(t, "B0FW7291VR", r.Get(ColASIN))
	assert.Equal(t, "addr", values[len(values)-1])
	assert.Equal(t, "", r.Get("Unknown"))
	assert.Equal(t, r, FromValues(values))

	var s Record
	for i, c := range Columns {
		s.Set(c, values[i])
	}
	assert.Equal(t, r, s)
}
