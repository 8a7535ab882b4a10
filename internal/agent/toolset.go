package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/cre-analyst/deal-memo-agent/internal/models"
	"github.com/cre-analyst/deal-memo-agent/internal/tools"
)

const (
	noDemographicsData = "No data found for this zip code in public datasets."
	noComparablesFound = "No comparable properties found for the given criteria."
)

// MapsTools is the geocoding/aerial surface the agent dispatches to.
type MapsTools interface {
	Geocode(ctx context.Context, address string) (*models.GeoResult, error)
	AerialInsights(latitude, longitude float64) (*models.AerialResult, error)
}

// WarehouseTools is the demographics/comparables surface the agent
// dispatches to.
type WarehouseTools interface {
	DemographicsByZip(ctx context.Context, zipCode string) (*models.Demographics, bool, error)
	FindComparables(ctx context.Context, params models.ComparablesParams) ([]models.ComparableProperty, error)
}

// Toolset executes the model's function calls against the real tools and
// translates every tool failure into an {error: message} payload. Errors
// never propagate past the dispatch boundary; the model narrates them.
type Toolset struct {
	maps      MapsTools
	warehouse WarehouseTools
	log       *zap.Logger
}

func NewToolset(maps MapsTools, warehouse WarehouseTools, log *zap.Logger) *Toolset {
	return &Toolset{maps: maps, warehouse: warehouse, log: log}
}

// Dispatch runs one named tool with the model-supplied arguments and returns
// the payload to feed back as the function response.
func (t *Toolset) Dispatch(ctx context.Context, name string, args map[string]any) map[string]any {
	t.log.Info("dispatching tool call", zap.String("tool", name))

	switch name {
	case "validate_address":
		return toMap(tools.ValidateAddress(stringArg(args, "address")))

	case "get_geocode_and_place_id":
		geo, err := t.maps.Geocode(ctx, stringArg(args, "address"))
		if err != nil {
			return errorPayload(err)
		}
		return toMap(geo)

	case "get_aerial_view_insights":
		aerial, err := t.maps.AerialInsights(floatArg(args, "latitude"), floatArg(args, "longitude"))
		if err != nil {
			return errorPayload(err)
		}
		return toMap(aerial)

	case "get_demographics_by_zip":
		demographics, found, err := t.warehouse.DemographicsByZip(ctx, stringArg(args, "zip_code"))
		if err != nil {
			return errorPayload(err)
		}
		if !found {
			return map[string]any{"demographics": noDemographicsData}
		}
		return map[string]any{"demographics": toMap(demographics)}

	case "find_comparable_properties_in_bq":
		params := models.ComparablesParams{
			City:         stringArg(args, "city"),
			State:        stringArg(args, "state"),
			PropertyType: optionalStringArg(args, "property_type"),
			MinSqft:      optionalFloatArg(args, "min_sqft"),
			MaxPrice:     optionalFloatArg(args, "max_price"),
			Limit:        intArg(args, "limit", tools.DefaultComparablesRows),
		}
		comps, err := t.warehouse.FindComparables(ctx, params)
		if err != nil {
			return errorPayload(err)
		}
		if len(comps) == 0 {
			return map[string]any{"comparable_properties": noComparablesFound}
		}
		return map[string]any{"comparable_properties": toSlice(comps)}

	default:
		t.log.Warn("model requested an unknown tool", zap.String("tool", name))
		return map[string]any{"error": fmt.Sprintf("Unknown tool: %s.", name)}
	}
}

// toolDeclarations registers the five functions with the same names,
// parameters, and descriptions the model was prompted against, grouped the
// same way: validation, maps, warehouse.
func toolDeclarations() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "validate_address",
					Description: "Validates if an address string appears to be a reasonable input. Checks for non-empty and minimum length.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"address": {Type: genai.TypeString, Description: "The property address to validate."},
						},
						Required: []string{"address"},
					},
				},
			},
		},
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "get_geocode_and_place_id",
					Description: "Gets geographic coordinates (lat/lon), a Place ID, the formatted address, and parsed city/state/zip components for a given address using the Geocoding API.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"address": {Type: genai.TypeString, Description: "The property address to geocode."},
						},
						Required: []string{"address"},
					},
				},
				{
					Name:        "get_aerial_view_insights",
					Description: "Gets aerial view insights for a coordinate pair, including a visual inspection link.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"latitude":  {Type: genai.TypeNumber, Description: "Latitude of the property."},
							"longitude": {Type: genai.TypeNumber, Description: "Longitude of the property."},
						},
						Required: []string{"latitude", "longitude"},
					},
				},
			},
		},
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "get_demographics_by_zip",
					Description: "Queries BigQuery public census datasets for demographic information (population, households, median income, median rent) for a zip code.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"zip_code": {Type: genai.TypeString, Description: "The zip code to look up."},
						},
						Required: []string{"zip_code"},
					},
				},
				{
					Name:        "find_comparable_properties_in_bq",
					Description: "Finds up to `limit` comparable commercial properties in a city and state from the custom comparables table, ordered by price descending.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"city":          {Type: genai.TypeString, Description: "City to search in."},
							"state":         {Type: genai.TypeString, Description: "State abbreviation to search in, e.g. CA."},
							"property_type": {Type: genai.TypeString, Description: "Optional property type filter, e.g. office or retail."},
							"min_sqft":      {Type: genai.TypeNumber, Description: "Optional minimum square footage, inclusive."},
							"max_price":     {Type: genai.TypeNumber, Description: "Optional maximum price, inclusive."},
							"limit":         {Type: genai.TypeInteger, Description: "Maximum number of rows to return. Defaults to 5."},
						},
						Required: []string{"city", "state"},
					},
				},
			},
		},
	}
}

func errorPayload(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

// toMap converts a typed payload to the map shape the function-calling
// protocol expects, going through JSON so the wire keys apply.
func toMap(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return errorPayload(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return errorPayload(err)
	}
	return out
}

func toSlice[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, toMap(item))
	}
	return out
}

// Model-supplied arguments arrive as decoded JSON, so numbers are float64.

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func floatArg(args map[string]any, key string) float64 {
	n, _ := args[key].(float64)
	return n
}

func intArg(args map[string]any, key string, fallback int) int {
	if n, ok := args[key].(float64); ok && n > 0 {
		return int(n)
	}
	return fallback
}

func optionalStringArg(args map[string]any, key string) *string {
	if s, ok := args[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func optionalFloatArg(args map[string]any, key string) *float64 {
	if n, ok := args[key].(float64); ok {
		return &n
	}
	return nil
}
