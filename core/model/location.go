package model

// Location is an opaque depot or crossdock code. It is only ever used as a
// lookup key; the dispatch engine attaches no meaning to the code itself.
type Location string

// DepotClass classifies a location as a cargo-producing depot or a crossdock
// transfer hub.
type DepotClass int

const (
	ClassDepot DepotClass = iota
	ClassCross
)

func (c DepotClass) String() string {
	switch c {
	case ClassDepot:
		return "DEPOT"
	case ClassCross:
		return "CROSS"
	}
	return "UNKNOWN"
}

// Classifier maps location codes to their depot class. It is built once from
// the depot classification table and read-only afterwards.
type Classifier map[Location]DepotClass

// InterLeg reports whether a trip from origin to destination counts as inter
// transport for deadline selection. A leg is intra whenever its destination
// is a crossdock or its origin is a depot; unclassified locations leave the
// leg inter.
func (c Classifier) InterLeg(origin, destination Location) bool {
	inter := true
	if cl, ok := c[destination]; ok && cl == ClassCross {
		inter = false
	}
	if cl, ok := c[origin]; ok && cl == ClassDepot {
		inter = false
	}
	return inter
}
