// Package models holds the transient payloads exchanged with the model and
// the HTTP caller. Nothing here is persisted; every value lives for a single
// request. JSON keys on the tool payloads are part of the prompt contract and
// must not change.
package models

// AnalyzeRequest is the inbound HTTP body.
type AnalyzeRequest struct {
	Address string `json:"address"`
}

// MemoResponse is the successful HTTP response.
type MemoResponse struct {
	DealMemo string `json:"deal_memo"`
}

// ErrorResponse is the HTTP error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationResult is the outcome of the address plausibility check.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// GeoResult carries the first geocoder candidate. City, state and zip stay
// empty when the geocoder omits the corresponding address component.
type GeoResult struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	PlaceID          string  `json:"place_id"`
	FormattedAddress string  `json:"formatted_address"`
	City             string  `json:"city,omitempty"`
	State            string  `json:"state,omitempty"`
	ZipCode          string  `json:"zip_code,omitempty"`
}

// AerialResult is a map link plus a fixed summary; no imagery is analyzed.
type AerialResult struct {
	Summary string `json:"aerial_view_summary"`
	MapLink string `json:"visual_inspection_link"`
}

// Demographics is the single aggregate row for a zip code.
type Demographics struct {
	TotalPopulation int64   `json:"total_population_2020"`
	MedianIncome    float64 `json:"median_household_income_2020"`
	TotalHouseholds int64   `json:"total_households_2020"`
	MedianRent      float64 `json:"median_rent_2020"`
}

// ComparablesParams filters the comparables search. A nil optional field
// means unconstrained, not zero.
type ComparablesParams struct {
	City         string
	State        string
	PropertyType *string
	MinSqft      *float64
	MaxPrice     *float64
	Limit        int
}

// ComparableProperty is one row of the comparables table.
type ComparableProperty struct {
	PropertyType string  `json:"property_type"`
	Price        float64 `json:"price"`
	Beds         float64 `json:"beds"`
	Baths        float64 `json:"baths"`
	Sqft         float64 `json:"sqft"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zip_code"`
	YearBuilt    int64   `json:"year_built"`
}
