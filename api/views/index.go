package views

import (
	_ "embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"legend/api/types"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"amount": formatAmount,
	"when":   formatTime,
}).Parse(indexHTML))

func RenderIndex(w io.Writer, summary types.Summary) error {
	return indexTemplate.Execute(w, summary)
}

// formatAmount groups thousands and keeps at most three fraction digits. It
// works on the decimal digits so large totals are not rounded through float64.
func formatAmount(d decimal.Decimal) string {
	text := d.Round(3).String()

	sign := ""
	if strings.HasPrefix(text, "-") {
		sign, text = "-", text[1:]
	}

	whole, frac, _ := strings.Cut(text, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}

	return b.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
