package pricing

// UnitID identifies one bookable overnight unit at Évika.
type UnitID string

const (
	Evika1 UnitID = "evika1"
	Evika2 UnitID = "evika2"
	Evika3 UnitID = "evika3"
	Evika4 UnitID = "evika4"
	Evika5 UnitID = "evika5"
)

type UnitKind string

const (
	KindApartment UnitKind = "apartment"
	KindCottage   UnitKind = "cottage"
	KindCaravan   UnitKind = "caravan"
)

type Unit struct {
	ID       UnitID   `json:"id"`
	Name     string   `json:"name"`
	Kind     UnitKind `json:"kind"`
	Capacity int      `json:"capacity"`
	Price    int64    `json:"price"`
}

var units = []Unit{
	{ID: Evika1, Name: "Évika 1", Kind: KindApartment, Capacity: 2, Price: 1500},
	{ID: Evika2, Name: "Évika 2", Kind: KindCottage, Capacity: 4, Price: 3000},
	{ID: Evika3, Name: "Évika 3", Kind: KindCottage, Capacity: 3, Price: 2250},
	{ID: Evika4, Name: "Évika 4", Kind: KindCottage, Capacity: 4, Price: 3000},
	{ID: Evika5, Name: "Évika 5", Kind: KindCaravan, Capacity: 4, Price: 3000},
}

// Units returns the accommodation catalogue in display order.
func Units() []Unit {
	out := make([]Unit, len(units))
	copy(out, units)
	return out
}

func UnitByID(id UnitID) (Unit, bool) {
	for _, u := range units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}
