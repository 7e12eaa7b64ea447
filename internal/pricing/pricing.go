// Package pricing computes the estimated price of an event booking at
// the venue. Estimate is pure and never fails: unparsable numbers count
// as zero so a live estimate can always be rendered.
package pricing

import (
	"strconv"
	"strings"
)

const Currency = "SEK"

// Rates in whole SEK.
const (
	LocationFee       int64 = 8000
	AdultRate         int64 = 200
	ChildRate         int64 = 100
	KitchenFee        int64 = 2500
	TableDressingRate int64 = 75
	GrillFee          int64 = 350
	ToyPackageFee     int64 = 3000
	CleaningFee       int64 = 3500
)

// maxCount caps leniently parsed numbers so products cannot overflow.
const maxCount int64 = 1_000_000

type FoodOption string

const (
	FoodNone       FoodOption = "none"
	FoodOwnCooking FoodOption = "ownCooking"
	FoodCatering   FoodOption = "catering"
)

// Selection is everything a visitor picks in the booking form. Counts
// and the catering budget stay strings, exactly as typed.
type Selection struct {
	Adults            string     `json:"adults,omitempty"`
	Children          string     `json:"children,omitempty"`
	Food              FoodOption `json:"foodOption,omitempty"`
	CateringMenuStyle string     `json:"cateringMenuStyle,omitempty"`
	CateringBudget    string     `json:"cateringBudget,omitempty"`

	TableDressing bool `json:"tableDressing,omitempty"`
	Grill         bool `json:"grill,omitempty"`
	Toys          bool `json:"toys,omitempty"`
	Cleaning      bool `json:"cleaning,omitempty"`

	// Equipment is free of charge but has to be requested.
	SmartTV     bool `json:"smartTV,omitempty"`
	Projector   bool `json:"projector,omitempty"`
	SoundSystem bool `json:"soundSystem,omitempty"`

	Overnight bool     `json:"overnight,omitempty"`
	Units     []UnitID `json:"accommodations,omitempty"`
}

// DefaultSelection is the form's initial state.
func DefaultSelection() Selection {
	return Selection{
		Children: "0",
		Food:     FoodNone,
	}
}

// Merge fills every unset field of s from DefaultSelection.
func (s Selection) Merge() Selection {
	def := DefaultSelection()
	if strings.TrimSpace(s.Children) == "" {
		s.Children = def.Children
	}
	if s.Food == "" {
		s.Food = def.Food
	}
	return s
}

func (s Selection) AdultCount() int64    { return ParseCount(s.Adults) }
func (s Selection) ChildCount() int64    { return ParseCount(s.Children) }
func (s Selection) Guests() int64        { return s.AdultCount() + s.ChildCount() }
func (s Selection) BudgetPerHead() int64 { return ParseCount(s.CateringBudget) }

// SelectedUnits returns the distinct known units that count toward the
// price. It is empty unless Overnight is set.
func (s Selection) SelectedUnits() []Unit {
	if !s.Overnight {
		return nil
	}
	seen := make(map[UnitID]bool, len(s.Units))
	var out []Unit
	for _, u := range units {
		for _, id := range s.Units {
			if id == u.ID && !seen[id] {
				seen[id] = true
				out = append(out, u)
			}
		}
	}
	return out
}

// ParseCount reads the leading decimal digits of s, ignoring surrounding
// whitespace and a leading plus sign. Negative or non-numeric input is 0.
func ParseCount(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || n > maxCount {
		return maxCount
	}
	return n
}

type LineCode string

const (
	LineLocation      LineCode = "location"
	LineAdults        LineCode = "adults"
	LineChildren      LineCode = "children"
	LineKitchen       LineCode = "kitchen"
	LineCatering      LineCode = "catering"
	LineTableDressing LineCode = "tableDressing"
	LineGrill         LineCode = "grill"
	LineToys          LineCode = "toys"
	LineCleaning      LineCode = "cleaning"
)

// Line is one priced row of a quote. Accommodation lines use the unit ID
// as their code.
type Line struct {
	Code      LineCode `json:"code"`
	Quantity  int64    `json:"quantity"`
	UnitPrice int64    `json:"unitPrice"`
	Amount    int64    `json:"amount"`
}

type Quote struct {
	Currency string `json:"currency"`
	Total    int64  `json:"total"`
	Lines    []Line `json:"lines"`
}

// Line returns the line with the given code.
func (q Quote) Line(code LineCode) (Line, bool) {
	for _, l := range q.Lines {
		if l.Code == code {
			return l, true
		}
	}
	return Line{}, false
}

func (q *Quote) add(code LineCode, qty, unitPrice int64) {
	amount := qty * unitPrice
	q.Lines = append(q.Lines, Line{Code: code, Quantity: qty, UnitPrice: unitPrice, Amount: amount})
	q.Total += amount
}

// Estimate prices a selection. Zero-amount lines for guests are omitted
// so the breakdown only lists what the customer pays for.
func Estimate(sel Selection) Quote {
	sel = sel.Merge()
	q := Quote{Currency: Currency}

	adults := sel.AdultCount()
	children := sel.ChildCount()
	guests := adults + children

	q.add(LineLocation, 1, LocationFee)
	if adults > 0 {
		q.add(LineAdults, adults, AdultRate)
	}
	if children > 0 {
		q.add(LineChildren, children, ChildRate)
	}

	switch sel.Food {
	case FoodOwnCooking:
		q.add(LineKitchen, 1, KitchenFee)
	case FoodCatering:
		if budget := sel.BudgetPerHead(); budget > 0 && guests > 0 {
			q.add(LineCatering, guests, budget)
		}
	}

	if sel.TableDressing && guests > 0 {
		q.add(LineTableDressing, guests, TableDressingRate)
	}
	if sel.Grill {
		q.add(LineGrill, 1, GrillFee)
	}

	for _, u := range sel.SelectedUnits() {
		q.add(LineCode(u.ID), 1, u.Price)
	}

	if sel.Toys {
		q.add(LineToys, 1, ToyPackageFee)
	}
	if sel.Cleaning {
		q.add(LineCleaning, 1, CleaningFee)
	}

	return q
}
