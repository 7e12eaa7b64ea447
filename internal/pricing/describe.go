package pricing

import (
	"fmt"
	"strconv"
)

type Language string

const (
	English Language = "en"
	Swedish Language = "sv"
)

// ParseLanguage maps anything but "sv" to English.
func ParseLanguage(s string) Language {
	if s == string(Swedish) {
		return Swedish
	}
	return English
}

type DescribedLine struct {
	Code   LineCode `json:"code"`
	Label  string   `json:"label"`
	Amount string   `json:"amount"`
}

var labels = map[Language]map[LineCode]string{
	English: {
		LineLocation:      "Location",
		LineAdults:        "%d adults × %s",
		LineChildren:      "%d children × %s",
		LineKitchen:       "Kitchen use",
		LineCatering:      "Catering (%d × %s)",
		LineTableDressing: "Table dressing (%d × %s)",
		LineGrill:         "BBQ gas grill",
		LineToys:          "Unlimited Toy Package",
		LineCleaning:      "Cleaning Service",
	},
	Swedish: {
		LineLocation:      "Lokal",
		LineAdults:        "%d vuxna × %s",
		LineChildren:      "%d barn × %s",
		LineKitchen:       "Köksanvändning",
		LineCatering:      "Catering (%d × %s)",
		LineTableDressing: "Borddukning (%d × %s)",
		LineGrill:         "Gasolgrill",
		LineToys:          "Obegränsat leksakspaket",
		LineCleaning:      "Städservice",
	},
}

var unitKinds = map[Language]map[UnitKind]string{
	English: {KindApartment: "Apartment", KindCottage: "Cottage", KindCaravan: "Luxury caravan"},
	Swedish: {KindApartment: "Lägenhet", KindCottage: "Stuga", KindCaravan: "Lyxig husvagn"},
}

// UnitLabel renders e.g. "Évika 2 - Cottage (4 pers)".
func UnitLabel(u Unit, lang Language) string {
	return fmt.Sprintf("%s - %s (%d pers)", u.Name, unitKinds[lang][u.Kind], u.Capacity)
}

// Describe renders the quote lines with labels in the given language.
func (q Quote) Describe(lang Language) []DescribedLine {
	out := make([]DescribedLine, 0, len(q.Lines))
	for _, l := range q.Lines {
		out = append(out, DescribedLine{
			Code:   l.Code,
			Label:  lineLabel(l, lang),
			Amount: FormatAmount(l.Amount, lang),
		})
	}
	return out
}

func lineLabel(l Line, lang Language) string {
	if u, ok := UnitByID(UnitID(l.Code)); ok {
		return UnitLabel(u, lang)
	}
	format := labels[lang][l.Code]
	switch l.Code {
	case LineAdults, LineChildren, LineCatering, LineTableDressing:
		return fmt.Sprintf(format, l.Quantity, FormatAmount(l.UnitPrice, lang))
	}
	return format
}

// FormatAmount groups thousands the way each language writes prices:
// "12,800 SEK" in English and "12 800 SEK" in Swedish.
func FormatAmount(amount int64, lang Language) string {
	sep := ","
	if lang == Swedish {
		sep = " "
	}
	return groupThousands(amount, sep) + " " + Currency
}

func groupThousands(n int64, sep string) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var out []byte
	for i := range len(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, sep...)
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}
