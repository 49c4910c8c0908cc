package domain

// DefaultPorts returns the built-in port registry used by the demo map.
// Each call returns a fresh map.
func DefaultPorts() PortRegistry {
	ports := []Port{
		{Name: "Shanghai", Lat: 31.2304, Lon: 121.4737},
		{Name: "Ningbo", Lat: 29.8683, Lon: 121.5440},
		{Name: "Xiamen", Lat: 24.4798, Lon: 118.0894},
		{Name: "Hong Kong", Lat: 22.3193, Lon: 114.1694},
		{Name: "Busan", Lat: 35.1028, Lon: 129.0403},
		{Name: "Singapore", Lat: 1.2644, Lon: 103.8200},
		{Name: "Colombo", Lat: 6.9271, Lon: 79.8612},
		{Name: "Jebel Ali", Lat: 25.0118, Lon: 55.0611},
		{Name: "Ras Tanura", Lat: 26.6436, Lon: 50.1597},
		{Name: "Suez", Lat: 30.5852, Lon: 32.3500},
		{Name: "Rotterdam", Lat: 51.9244, Lon: 4.4777},
		{Name: "Antwerp", Lat: 51.2194, Lon: 4.4025},
		{Name: "Felixstowe", Lat: 51.9617, Lon: 1.3513},
		{Name: "Hamburg", Lat: 53.5511, Lon: 9.9937},
		{Name: "Los Angeles", Lat: 33.7405, Lon: -118.2760},
		{Name: "New York", Lat: 40.6840, Lon: -74.0440},
		{Name: "Charleston", Lat: 32.7765, Lon: -79.9311},
		{Name: "Savannah", Lat: 32.0809, Lon: -81.0912},
	}
	reg := make(PortRegistry, len(ports))
	for _, p := range ports {
		reg[p.Name] = p
	}
	return reg
}

// DefaultRoutes returns the built-in lanes. Coastal lanes are short loops
// that end where they start.
func DefaultRoutes() RouteRegistry {
	return RouteRegistry{
		"asia_europe":         {"Shanghai", "Hong Kong", "Singapore", "Colombo", "Suez", "Rotterdam", "Hamburg"},
		"transpacific":        {"Shanghai", "Busan", "Los Angeles"},
		"transatlantic":       {"Rotterdam", "Felixstowe", "New York"},
		"gulf_asia":           {"Ras Tanura", "Jebel Ali", "Colombo", "Singapore", "Ningbo"},
		"gulf_europe":         {"Ras Tanura", "Suez", "Rotterdam"},
		"china_coastal":       {"Shanghai", "Ningbo", "Xiamen", "Hong Kong", "Shanghai"},
		"north_europe_feeder": {"Rotterdam", "Antwerp", "Felixstowe", "Hamburg", "Rotterdam"},
		"us_east_coastal":     {"New York", "Charleston", "Savannah", "New York"},
	}
}

// DefaultVessels returns the simulated fleet.
func DefaultVessels() []Vessel {
	return []Vessel{
		{ID: "477123400", Name: "Orient Meridian", Category: CategoryContainer},
		{ID: "563048200", Name: "Strait Runner", Category: CategoryContainer},
		{ID: "244870500", Name: "Nordzee Express", Category: CategoryContainer},
		{ID: "636019800", Name: "Gulf Pioneer", Category: CategoryTanker},
		{ID: "538007300", Name: "Desert Crown", Category: CategoryTanker},
		{ID: "351220900", Name: "Pacific Ore", Category: CategoryBulk},
		{ID: "215764100", Name: "Iron Harvest", Category: CategoryBulk},
		{ID: "413552600", Name: "Min Jiang", Category: CategoryCoastal},
		{ID: "246331700", Name: "Scheldt Feeder", Category: CategoryCoastal},
		{ID: "367440200", Name: "Lowcountry Star", Category: CategoryCoastal},
	}
}

// DefaultProfiles returns the per-category lane eligibility, speed range and jitter.
func DefaultProfiles() map[Category]CategoryProfile {
	return map[Category]CategoryProfile{
		CategoryContainer: {
			RouteTypes: []string{"asia_europe", "transpacific", "transatlantic"},
			MinSpeed:   16, MaxSpeed: 24, Jitter: 0.5,
		},
		CategoryTanker: {
			RouteTypes: []string{"gulf_asia", "gulf_europe"},
			MinSpeed:   12, MaxSpeed: 16, Jitter: 0.5,
		},
		CategoryBulk: {
			RouteTypes: []string{"transpacific", "asia_europe", "gulf_asia"},
			MinSpeed:   11, MaxSpeed: 15, Jitter: 0.5,
		},
		CategoryCoastal: {
			RouteTypes: []string{"china_coastal", "north_europe_feeder", "us_east_coastal"},
			MinSpeed:   8, MaxSpeed: 14, Jitter: 0.1,
		},
	}
}

// SuezCanal is the default slow zone.
var SuezCanal = BoundingBox{MinLat: 29.9, MaxLat: 31.3, MinLon: 32.2, MaxLon: 32.6}
