package world

// Karachi returns a fresh copy of the Karachi city graph: roughly one node
// per major district or key facility (~20M people across 27 nodes), with
// road and highway edges between them. Callers own the returned copy, so
// mutating edge blocking never touches another session's graph.
func Karachi() *Graph {
	g := &Graph{
		Nodes: []Node{
			// District centers.
			{ID: 0, Name: "Karachi Central", Lat: 24.8607, Lng: 67.0104, Population: 3822325, Type: NodeDistrictCenter, Infrastructure: 0.8, Vulnerability: map[string]float64{"earthquake": 1.2, "flood": 0.9, "wildfire": 0.5}},
			{ID: 1, Name: "Karachi East", Lat: 24.8800, Lng: 67.0600, Population: 3921742, Type: NodeDistrictCenter, Infrastructure: 0.7, Vulnerability: map[string]float64{"earthquake": 1.1, "flood": 1.0, "wildfire": 0.6}},
			{ID: 2, Name: "Karachi West", Lat: 24.8200, Lng: 66.9500, Population: 2679380, Type: NodeDistrictCenter, Infrastructure: 0.6, Vulnerability: map[string]float64{"earthquake": 1.0, "flood": 1.1, "wildfire": 0.7}},
			{ID: 3, Name: "Karachi South", Lat: 24.8200, Lng: 67.0300, Population: 2329764, Type: NodeDistrictCenter, Infrastructure: 0.75, Vulnerability: map[string]float64{"earthquake": 1.1, "flood": 1.2, "wildfire": 0.5}},
			{ID: 4, Name: "Malir", Lat: 24.9500, Lng: 67.2000, Population: 2432248, Type: NodeDistrictCenter, Infrastructure: 0.5, Vulnerability: map[string]float64{"earthquake": 0.9, "flood": 1.3, "wildfire": 0.8}},
			{ID: 5, Name: "Korangi", Lat: 24.8200, Lng: 67.1200, Population: 3128971, Type: NodeDistrictCenter, Infrastructure: 0.65, Vulnerability: map[string]float64{"earthquake": 1.0, "flood": 1.1, "wildfire": 0.6}},
			{ID: 6, Name: "Kemari", Lat: 24.7800, Lng: 66.9500, Population: 2068451, Type: NodeDistrictCenter, Infrastructure: 0.6, Vulnerability: map[string]float64{"earthquake": 1.0, "flood": 1.4, "wildfire": 0.7}},
			// Residential areas.
			{ID: 7, Name: "Saddar Residential", Lat: 24.8600, Lng: 67.0100, Population: 500000, Type: NodeResidential, Infrastructure: 0.7, Vulnerability: map[string]float64{"earthquake": 1.2, "flood": 0.8, "wildfire": 0.6}},
			{ID: 8, Name: "Lyari Residential", Lat: 24.8500, Lng: 66.9900, Population: 600000, Type: NodeResidential, Infrastructure: 0.5, Vulnerability: map[string]float64{"earthquake": 1.3, "flood": 1.0, "wildfire": 0.7}},
			{ID: 9, Name: "Clifton Residential", Lat: 24.8100, Lng: 67.0300, Population: 400000, Type: NodeResidential, Infrastructure: 0.8, Vulnerability: map[string]float64{"earthquake": 1.0, "flood": 1.4, "wildfire": 0.5}},
			{ID: 10, Name: "Gulshan-e-Iqbal Residential", Lat: 24.9200, Lng: 67.0800, Population: 800000, Type: NodeResidential, Infrastructure: 0.8, Vulnerability: map[string]float64{"earthquake": 1.1, "flood": 0.9, "wildfire": 0.6}},
			{ID: 11, Name: "Orangi Town Residential", Lat: 24.9500, Lng: 66.9800, Population: 1000000, Type: NodeResidential, Infrastructure: 0.4, Vulnerability: map[string]float64{"earthquake": 1.3, "flood": 1.2, "wildfire": 0.8}},
			{ID: 12, Name: "North Nazimabad Residential", Lat: 24.9300, Lng: 67.0400, Population: 700000, Type: NodeResidential, Infrastructure: 0.6, Vulnerability: map[string]float64{"earthquake": 1.1, "flood": 1.0, "wildfire": 0.7}},
			// Commercial and industrial areas.
			{ID: 13, Name: "Saddar Market", Lat: 24.8550, Lng: 67.0150, Population: 100000, Type: NodeCommercial, Infrastructure: 0.9, Vulnerability: map[string]float64{"earthquake": 1.2, "flood": 0.7, "wildfire": 0.4}},
			{ID: 14, Name: "Burns Road Offices", Lat: 24.8650, Lng: 67.0050, Population: 50000, Type: NodeCommercial, Infrastructure: 0.8, Vulnerability: map[string]float64{"earthquake": 1.1, "flood": 0.8, "wildfire": 0.5}},
			{ID: 15, Name: "Tariq Road Market", Lat: 24.8750, Lng: 67.0250, Population: 150000, Type: NodeCommercial, Infrastructure: 0.7, Vulnerability: map[string]float64{"earthquake": 1.0, "flood": 0.9, "wildfire": 0.6}},
			{ID: 16, Name: "Gulshan-e-Iqbal Commercial", Lat: 24.9150, Lng: 67.0750, Population: 200000, Type: NodeCommercial, Infrastructure: 0.8, Vulnerability: map[string]float64{"earthquake": 1.1, "flood": 0.8, "wildfire": 0.5}},
			{ID: 17, Name: "Korangi Industrial Area", Lat: 24.8250, Lng: 67.1250, Population: 300000, Type: NodeIndustrial, Infrastructure: 0.6, Vulnerability: map[string]float64{"earthquake": 1.0, "flood": 1.1, "wildfire": 0.8}},
			// Landmarks.
			{ID: 18, Name: "Jinnah International Airport", Lat: 24.9065, Lng: 67.1605, Population: 0, Type: NodeLandmark, Infrastructure: 0.9, Vulnerability: map[string]float64{"earthquake": 1.0, "flood": 0.8, "wildfire": 0.4}},
			{ID: 19, Name: "Port of Karachi", Lat: 24.7800, Lng: 66.9700, Population: 0, Type: NodeLandmark, Infrastructure: 0.8, Vulnerability: map[string]float64{"earthquake": 1.1, "flood": 1.5, "wildfire": 0.6}},
			// Public services.
			{ID: 20, Name: "Jinnah Postgraduate Medical Centre", Lat: 24.8600, Lng: 67.0100, Population: 0, Type: NodePublicService, Infrastructure: 0.9, Vulnerability: map[string]float64{"earthquake": 1.0, "flood": 0.7, "wildfire": 0.3}},
			{ID: 21, Name: "Civil Hospital Karachi", Lat: 24.8500, Lng: 67.0200, Population: 0, Type: NodePublicService, Infrastructure: 0.8, Vulnerability: map[string]float64{"earthquake": 1.1, "flood": 0.8, "wildfire": 0.4}},
			{ID: 22, Name: "Aga Khan Hospital", Lat: 24.8800, Lng: 67.0600, Population: 0, Type: NodePublicService, Infrastructure: 0.95, Vulnerability: map[string]float64{"earthquake": 0.9, "flood": 0.6, "wildfire": 0.2}},
			{ID: 23, Name: "Fire Station Clifton", Lat: 24.8100, Lng: 67.0250, Population: 0, Type: NodePublicService, Infrastructure: 0.8, Vulnerability: map[string]float64{"earthquake": 1.0, "flood": 1.0, "wildfire": 0.5}},
			{ID: 24, Name: "Fire Station Korangi", Lat: 24.8200, Lng: 67.1150, Population: 0, Type: NodePublicService, Infrastructure: 0.7, Vulnerability: map[string]float64{"earthquake": 1.1, "flood": 1.1, "wildfire": 0.6}},
			{ID: 25, Name: "Fire Station Malir", Lat: 24.9400, Lng: 67.1900, Population: 0, Type: NodePublicService, Infrastructure: 0.6, Vulnerability: map[string]float64{"earthquake": 0.9, "flood": 1.2, "wildfire": 0.7}},
			{ID: 26, Name: "Provincial Disaster Management Authority (PDMA)", Lat: 24.8600, Lng: 67.0000, Population: 0, Type: NodePublicService, Infrastructure: 0.9, Vulnerability: map[string]float64{"earthquake": 0.8, "flood": 0.7, "wildfire": 0.3}},
		},
		Edges: []Edge{
			// District center backbone.
			{From: 0, To: 1, Distance: 5.0, Type: "highway"},
			{From: 0, To: 2, Distance: 7.0, Type: "highway"},
			{From: 0, To: 3, Distance: 4.0, Type: "road"},
			{From: 1, To: 4, Distance: 15.0, Type: "highway"},
			{From: 1, To: 5, Distance: 6.0, Type: "road"},
			{From: 2, To: 6, Distance: 5.0, Type: "road"},
			{From: 3, To: 6, Distance: 8.0, Type: "highway"},
			{From: 4, To: 5, Distance: 20.0, Type: "highway"},
			// Residential feeders.
			{From: 0, To: 7, Distance: 1.0, Type: "road"},
			{From: 0, To: 8, Distance: 2.0, Type: "road"},
			{From: 3, To: 9, Distance: 1.0, Type: "road"},
			{From: 1, To: 10, Distance: 3.0, Type: "road"},
			{From: 0, To: 11, Distance: 10.0, Type: "highway"},
			{From: 1, To: 12, Distance: 5.0, Type: "road"},
			// Commercial and industrial links.
			{From: 0, To: 13, Distance: 0.5, Type: "road"},
			{From: 0, To: 14, Distance: 1.0, Type: "road"},
			{From: 0, To: 15, Distance: 2.0, Type: "road"},
			{From: 1, To: 16, Distance: 2.0, Type: "road"},
			{From: 5, To: 17, Distance: 1.0, Type: "road"},
			// Landmarks.
			{From: 0, To: 18, Distance: 12.0, Type: "highway"},
			{From: 1, To: 18, Distance: 8.0, Type: "road"},
			{From: 6, To: 19, Distance: 2.0, Type: "road"},
			// Public services.
			{From: 0, To: 20, Distance: 0.5, Type: "road"},
			{From: 0, To: 21, Distance: 1.0, Type: "road"},
			{From: 1, To: 22, Distance: 1.0, Type: "road"},
			{From: 3, To: 23, Distance: 0.5, Type: "road"},
			{From: 5, To: 24, Distance: 0.5, Type: "road"},
			{From: 4, To: 25, Distance: 1.0, Type: "road"},
			{From: 0, To: 26, Distance: 1.0, Type: "road"},
			// Cross links for density.
			{From: 7, To: 13, Distance: 0.5, Type: "road"},
			{From: 9, To: 23, Distance: 0.5, Type: "road"},
			{From: 10, To: 16, Distance: 1.0, Type: "road"},
		},
	}
	return g
}
