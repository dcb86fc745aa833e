package assistant

import (
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
)

var funcs = template.FuncMap{
	"num":    num,
	"rupiah": rupiah,
	"lower":  strings.ToLower,
	"join":   strings.Join,
}

// num renders a float with at most one decimal.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*10)/10, 'f', -1, 64)
}

// rupiah renders an amount the Indonesian way, e.g. "Rp 15.000".
func rupiah(f float64) string {
	s := humanize.Comma(int64(math.Round(f)))
	return "Rp " + strings.ReplaceAll(s, ",", ".")
}
