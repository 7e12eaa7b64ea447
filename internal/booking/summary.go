package booking

import (
	"fmt"
	"strings"

	"github.com/eventika/venue-api/internal/notifier"
	"github.com/eventika/venue-api/internal/pricing"
)

// ComposeSummary renders the plain-text message the owner receives. The
// total is the server-side quote, not the client's estimate.
func ComposeSummary(p Payload, q pricing.Quote) notifier.Notification {
	lang := pricing.English
	var b strings.Builder

	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n", title, strings.Repeat("-", len([]rune(title))))
	}

	b.WriteString("NEW BOOKING REQUEST\n====================\n")

	section("CONTACT DETAILS")
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\n", p.Name, p.Email, p.Phone)

	section("EVENT DETAILS")
	fmt.Fprintf(&b, "Date: %s\n", p.Date)
	fmt.Fprintf(&b, "Alternative Dates: %s\n", orDefault(p.AlternativeDates, "None provided"))
	fmt.Fprintf(&b, "Adults: %s\n", p.Adults)
	fmt.Fprintf(&b, "Children (>12y): %s\n", orDefault(p.Children, "0"))

	section("FOOD & DRINKS")
	switch p.Food {
	case pricing.FoodOwnCooking:
		fmt.Fprintf(&b, "Own cooking/caterer (Kitchen use: %s)\n", pricing.FormatAmount(pricing.KitchenFee, lang))
	case pricing.FoodCatering:
		b.WriteString("Catering requested\n")
		fmt.Fprintf(&b, "  Menu style: %s\n", orDefault(p.CateringMenuStyle, "Not specified"))
		budget := "Not specified"
		if p.CateringBudget != "" {
			budget = p.CateringBudget + " " + pricing.Currency
		}
		fmt.Fprintf(&b, "  Budget per person: %s\n", budget)
	default:
		b.WriteString("No food service requested\n")
	}

	section("EQUIPMENT REQUESTED (no cost)")
	var equipment []string
	if p.SmartTV {
		equipment = append(equipment, "Smart TV")
	}
	if p.Projector {
		equipment = append(equipment, "Projector on 4m wall")
	}
	if p.SoundSystem {
		equipment = append(equipment, "B&O Sound System")
	}
	b.WriteString(listOr(equipment, ", ", "None requested"))

	section("ACCOMMODATION (Évika Cottage Hotel)")
	var stays []string
	for _, u := range p.SelectedUnits() {
		stays = append(stays, fmt.Sprintf("%s - %s", pricing.UnitLabel(u, lang), pricing.FormatAmount(u.Price, lang)))
	}
	b.WriteString(listOr(stays, "\n", "Not requested"))

	section("OTHER OPTIONALS")
	var extras []string
	if p.TableDressing {
		extras = append(extras, fmt.Sprintf("Table dressing (%d SEK × %d guests)", pricing.TableDressingRate, p.Guests()))
	}
	if p.Grill {
		extras = append(extras, fmt.Sprintf("BBQ gas grill (%s)", pricing.FormatAmount(pricing.GrillFee, lang)))
	}
	if p.Toys {
		extras = append(extras, fmt.Sprintf("Unlimited Toy Package (%s)", pricing.FormatAmount(pricing.ToyPackageFee, lang)))
	}
	if p.Cleaning {
		extras = append(extras, fmt.Sprintf("Cleaning Service (%s)", pricing.FormatAmount(pricing.CleaningFee, lang)))
	}
	b.WriteString(listOr(extras, "\n", "None selected"))

	fmt.Fprintf(&b, "\nESTIMATED TOTAL: %s\n", pricing.FormatAmount(q.Total, lang))
	if _, priced := q.Line(pricing.LineCatering); p.Food == pricing.FoodCatering && !priced {
		b.WriteString("(Catering cost not included - awaiting budget)\n")
	}

	section("ADDITIONAL MESSAGE")
	b.WriteString(orDefault(p.Message, "No additional message") + "\n")

	b.WriteString("\n---\nThis booking request was submitted via the Eventika website.\n")
	fmt.Fprintf(&b, "Reply directly to %s to respond to this inquiry.", p.Email)

	return notifier.Notification{
		Title:   "New Booking Request from " + p.Name,
		Content: b.String(),
		ReplyTo: p.Email,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func listOr(items []string, sep, empty string) string {
	if len(items) == 0 {
		return empty + "\n"
	}
	return strings.Join(items, sep) + "\n"
}
