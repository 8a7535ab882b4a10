package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/cre-analyst/deal-memo-agent/internal/models"
)

const (
	demographicsTable      = "bigquery-public-data.census_bureau_acs.zip_code_2020_5yr"
	DefaultComparablesRows = 5
)

// WarehouseClient runs the demographic and comparables queries. All filter
// values are bound as named query parameters; nothing from the model is ever
// interpolated into the SQL text.
type WarehouseClient struct {
	bq               *bigquery.Client
	comparablesTable string
	log              *zap.Logger
}

func NewWarehouseClient(bq *bigquery.Client, comparablesTable string, log *zap.Logger) *WarehouseClient {
	return &WarehouseClient{
		bq:               bq,
		comparablesTable: comparablesTable,
		log:              log,
	}
}

// DemographicsByZip returns the aggregate census row for a zip code. The
// second return value reports whether a row was found; zero rows is not an
// error.
func (w *WarehouseClient) DemographicsByZip(ctx context.Context, zipCode string) (*models.Demographics, bool, error) {
	if zipCode == "" {
		w.log.Warn("demographic query without a zip code")
		return nil, false, errors.New("Zip code is required for demographic query.")
	}

	sql, params := demographicsQuery(zipCode)
	w.log.Info("executing demographic query", zap.String("zip_code", zipCode))

	q := w.bq.Query(sql)
	q.Parameters = params
	it, err := q.Read(ctx)
	if err != nil {
		w.log.Error("demographic query failed", zap.String("zip_code", zipCode), zap.Error(err))
		return nil, false, fmt.Errorf("BigQuery demographic query failed: %v.", err)
	}

	var row map[string]bigquery.Value
	switch err := it.Next(&row); {
	case err == iterator.Done:
		w.log.Warn("no demographics found", zap.String("zip_code", zipCode))
		return nil, false, nil
	case err != nil:
		w.log.Error("demographic query failed", zap.String("zip_code", zipCode), zap.Error(err))
		return nil, false, fmt.Errorf("BigQuery demographic query failed: %v.", err)
	}

	return demographicsFromRow(row), true, nil
}

// FindComparables returns up to params.Limit comparable properties ordered by
// price descending. An empty result set comes back as a nil slice with a nil
// error.
func (w *WarehouseClient) FindComparables(ctx context.Context, params models.ComparablesParams) ([]models.ComparableProperty, error) {
	if params.City == "" || params.State == "" {
		w.log.Warn("comparables query missing city or state")
		return nil, errors.New("City and State are required to find comparables.")
	}
	if params.Limit <= 0 {
		params.Limit = DefaultComparablesRows
	}

	sql, queryParams := comparablesQuery(w.comparablesTable, params)
	w.log.Info("executing comparables query",
		zap.String("city", params.City),
		zap.String("state", params.State))

	q := w.bq.Query(sql)
	q.Parameters = queryParams
	it, err := q.Read(ctx)
	if err != nil {
		w.log.Error("comparables query failed", zap.Error(err))
		return nil, fmt.Errorf("BigQuery comparables query failed: %v.", err)
	}

	var results []models.ComparableProperty
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			w.log.Error("comparables query failed", zap.Error(err))
			return nil, fmt.Errorf("BigQuery comparables query failed: %v.", err)
		}
		results = append(results, comparableFromRow(row))
	}

	w.log.Info("comparables query finished", zap.Int("rows", len(results)))
	return results, nil
}

// demographicsQuery builds the aggregate over the public census table. The
// underlying table is one row per zip, so the sums degenerate to identity but
// guard against duplicate rows.
func demographicsQuery(zipCode string) (string, []bigquery.QueryParameter) {
	sql := fmt.Sprintf(`SELECT
    SUM(total_pop) AS total_population_2020,
    AVG(median_income) AS median_household_income_2020,
    SUM(households) AS total_households_2020,
    AVG(median_rent) AS median_rent_2020
FROM
    %s
WHERE
    geo_id = @zip_code
GROUP BY
    geo_id`, "`"+demographicsTable+"`")

	return sql, []bigquery.QueryParameter{
		{Name: "zip_code", Value: zipCode},
	}
}

// comparablesQuery builds the filtered, ordered, truncated select over the
// custom comparables table. Optional filters contribute a predicate only when
// they are supplied.
func comparablesQuery(tableID string, p models.ComparablesParams) (string, []bigquery.QueryParameter) {
	var b strings.Builder
	b.WriteString("SELECT\n")
	b.WriteString("    property_type, price, beds, baths, sqft, address, city, state, zip_code, year_built\n")
	b.WriteString("FROM\n    `" + tableID + "`\n")
	b.WriteString("WHERE\n    LOWER(city) = LOWER(@city) AND LOWER(state) = LOWER(@state)")

	params := []bigquery.QueryParameter{
		{Name: "city", Value: p.City},
		{Name: "state", Value: p.State},
	}

	if p.PropertyType != nil {
		b.WriteString("\n    AND LOWER(property_type) = LOWER(@property_type)")
		params = append(params, bigquery.QueryParameter{Name: "property_type", Value: *p.PropertyType})
	}
	if p.MinSqft != nil {
		b.WriteString("\n    AND sqft >= @min_sqft")
		params = append(params, bigquery.QueryParameter{Name: "min_sqft", Value: *p.MinSqft})
	}
	if p.MaxPrice != nil {
		b.WriteString("\n    AND price <= @max_price")
		params = append(params, bigquery.QueryParameter{Name: "max_price", Value: *p.MaxPrice})
	}

	b.WriteString("\nORDER BY price DESC\nLIMIT @row_limit")
	params = append(params, bigquery.QueryParameter{Name: "row_limit", Value: int64(p.Limit)})

	return b.String(), params
}

func demographicsFromRow(row map[string]bigquery.Value) *models.Demographics {
	return &models.Demographics{
		TotalPopulation: valueInt64(row["total_population_2020"]),
		MedianIncome:    valueFloat64(row["median_household_income_2020"]),
		TotalHouseholds: valueInt64(row["total_households_2020"]),
		MedianRent:      valueFloat64(row["median_rent_2020"]),
	}
}

func comparableFromRow(row map[string]bigquery.Value) models.ComparableProperty {
	return models.ComparableProperty{
		PropertyType: valueString(row["property_type"]),
		Price:        valueFloat64(row["price"]),
		Beds:         valueFloat64(row["beds"]),
		Baths:        valueFloat64(row["baths"]),
		Sqft:         valueFloat64(row["sqft"]),
		Address:      valueString(row["address"]),
		City:         valueString(row["city"]),
		State:        valueString(row["state"]),
		ZipCode:      valueString(row["zip_code"]),
		YearBuilt:    valueInt64(row["year_built"]),
	}
}

// BigQuery hands back NUMERIC-ish columns as int64 or float64 depending on
// the column type, and NULL as nil; these helpers normalize both.

func valueString(v bigquery.Value) string {
	s, _ := v.(string)
	return s
}

func valueInt64(v bigquery.Value) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func valueFloat64(v bigquery.Value) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}
