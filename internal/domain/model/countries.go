package model

// countryNames maps loader country codes to display names.
var countryNames = map[string]string{
	"AUS":     "Australia",
	"AUT":     "Austria",
	"BEL":     "Belgium",
	"BGR":     "Bulgaria",
	"CAN":     "Canada",
	"CHE":     "Switzerland",
	"CHL":     "Chile",
	"CZE":     "Czech Republic",
	"DEUTNP":  "Germany",
	"DNK":     "Denmark",
	"ESP":     "Spain",
	"EST":     "Estonia",
	"FIN":     "Finland",
	"FRATNP":  "France",
	"GBRTENW": "England & Wales",
	"GBR_NIR": "Northern Ireland",
	"GBR_SCO": "Scotland",
	"GRC":     "Greece",
	"HRV":     "Croatia",
	"HUN":     "Hungary",
	"ISL":     "Iceland",
	"ISR":     "Israel",
	"ITA":     "Italy",
	"LTU":     "Lithuania",
	"LUX":     "Luxembourg",
	"LVA":     "Latvia",
	"NLD":     "Netherlands",
	"NOR":     "Norway",
	"NZL_NP":  "New Zealand",
	"POL":     "Poland",
	"PRT":     "Portugal",
	"SVK":     "Slovakia",
	"SVN":     "Slovenia",
	"SWE":     "Sweden",
	"TWN":     "Taiwan",
	"USA":     "United States",
}

// CountryName returns the display name for code, or code itself when unknown.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}
