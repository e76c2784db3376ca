package catalog

// Region is a coarse geographic grouping used for browsing.
type Region string

const (
	RegionEast           Region = "east"
	RegionSouth          Region = "south"
	RegionWest           Region = "west"
	RegionNorth          Region = "north"
	RegionCentral        Region = "central"
	RegionSoutheast      Region = "southeast"
	RegionSouthwest      Region = "southwest"
	RegionNortheast      Region = "northeast"
	RegionNorthwest      Region = "northwest"
	RegionGreaterBayArea Region = "greaterBayArea"
)

var cityRegions = map[string]Region{
	"Beijing":   RegionNorth,
	"Xi'an":     RegionNorthwest,
	"Shanghai":  RegionEast,
	"Suzhou":    RegionEast,
	"Hangzhou":  RegionSoutheast,
	"Nanjing":   RegionEast,
	"Wuzhen":    RegionSoutheast,
	"Guangzhou": RegionGreaterBayArea,
	"Shenzhen":  RegionGreaterBayArea,
	"Hong Kong": RegionGreaterBayArea,
	"Macau":     RegionGreaterBayArea,
	"Guilin":    RegionSouth,
	"Chengdu":   RegionSouthwest,
}

// RegionForCity returns the region of city, or central when unknown.
func RegionForCity(city string) Region {
	if r, ok := cityRegions[city]; ok {
		return r
	}
	return RegionCentral
}

// Regions lists all regions in canonical order.
func Regions() []Region {
	return []Region{
		RegionEast, RegionSouth, RegionWest, RegionNorth, RegionCentral,
		RegionSoutheast, RegionSouthwest, RegionNortheast, RegionNorthwest, RegionGreaterBayArea,
	}
}

// Valid reports whether r is a known region.
func (r Region) Valid() bool {
	for _, known := range Regions() {
		if r == known {
			return true
		}
	}
	return false
}
