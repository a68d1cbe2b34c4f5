// Package feature defines the input schema for the California housing model
// and the tabular types prediction requests are normalized into.
package feature

// Names is the fixed ordered set of features every prediction request
// must supply. Extra columns are tolerated and ignored downstream.
var Names = []string{
	"longitude",
	"latitude",
	"housing_median_age",
	"total_rooms",
	"total_bedrooms",
	"population",
	"households",
	"median_income",
	"ocean_proximity",
}

// CategoricalName is the single non-numeric feature.
const CategoricalName = "ocean_proximity"

// NumericNames is Names without the categorical column.
var NumericNames = Names[:len(Names)-1]

// OceanProximityValues is the allowed domain for ocean_proximity.
var OceanProximityValues = []string{
	"<1H OCEAN",
	"INLAND",
	"NEAR OCEAN",
	"NEAR BAY",
	"ISLAND",
}

// IsValidOceanProximity reports whether v is in the allowed domain.
func IsValidOceanProximity(v string) bool {
	for _, allowed := range OceanProximityValues {
		if v == allowed {
			return true
		}
	}
	return false
}
