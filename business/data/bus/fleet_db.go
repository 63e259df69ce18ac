package bus

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// vehicleRow is the fleet_vehicle table layout, driver columns are null when no driver is assigned
type vehicleRow struct {
	Vehicle
	Lat         float64 `db:"lat"`
	Lng         float64 `db:"lng"`
	DriverName  *string `db:"driver_name"`
	DriverPhone *string `db:"driver_phone"`
}

// GetVehicles retrieves the registered fleet ordered by registration
func GetVehicles(db *sqlx.DB) ([]Vehicle, error) {
	query := "select vehicle_id, route_id, lat, lng, status, capacity, current_passengers, delay_minutes, " +
		"speed, driver_name, driver_phone, last_updated from fleet_vehicle order by registered_at, vehicle_id"
	var rows []vehicleRow
	err := db.Select(&rows, query)
	if err != nil {
		return nil, err
	}
	results := make([]Vehicle, 0, len(rows))
	for _, row := range rows {
		vehicle := row.Vehicle
		vehicle.Location = Location{Lat: row.Lat, Lng: row.Lng}
		if row.DriverName != nil {
			vehicle.Driver = &Driver{Name: *row.DriverName}
			if row.DriverPhone != nil {
				vehicle.Driver.Phone = *row.DriverPhone
			}
		}
		results = append(results, vehicle)
	}
	return results, nil
}

// GetRoutes retrieves the route catalog in load order. Stops, path, schedule and features are jsonb columns
func GetRoutes(db *sqlx.DB) ([]Route, error) {
	query := "select route_id, name, from_name, to_name, stops, path, schedule, fare, duration_minutes, " +
		"frequency_minutes, route_type, features, is_active from route_catalog order by load_order, route_id"
	var results []Route
	err := db.Select(&results, query)
	return results, err
}

// LoadSeed retrieves vehicles and routes from the database and validates them like a seed file
func LoadSeed(db *sqlx.DB) (*Seed, error) {
	vehicles, err := GetVehicles(db)
	if err != nil {
		return nil, fmt.Errorf("loading vehicles: %w", err)
	}
	routes, err := GetRoutes(db)
	if err != nil {
		return nil, fmt.Errorf("loading routes: %w", err)
	}
	seed := &Seed{Vehicles: vehicles, Routes: routes}
	if err = seed.Validate(); err != nil {
		return nil, err
	}
	return seed, nil
}

// scanJSON unmarshal a jsonb column value into dest
func scanJSON(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	}
	return fmt.Errorf("unable to scan %T into %T", src, dest)
}

// Scan implements sql.Scanner for StopList
func (s *StopList) Scan(src interface{}) error {
	return scanJSON(src, (*[]Stop)(s))
}

// Value implements driver.Valuer for StopList
func (s StopList) Value() (driver.Value, error) {
	return json.Marshal([]Stop(s))
}

// Scan implements sql.Scanner for Path
func (p *Path) Scan(src interface{}) error {
	return scanJSON(src, (*[]Location)(p))
}

// Value implements driver.Valuer for Path
func (p Path) Value() (driver.Value, error) {
	return json.Marshal([]Location(p))
}

// Scan implements sql.Scanner for Schedule
func (s *Schedule) Scan(src interface{}) error {
	type plain Schedule
	return scanJSON(src, (*plain)(s))
}

// Value implements driver.Valuer for Schedule
func (s Schedule) Value() (driver.Value, error) {
	type plain Schedule
	return json.Marshal(plain(s))
}

// Scan implements sql.Scanner for FeatureSet
func (f *FeatureSet) Scan(src interface{}) error {
	return scanJSON(src, (*[]string)(f))
}

// Value implements driver.Valuer for FeatureSet
func (f FeatureSet) Value() (driver.Value, error) {
	return json.Marshal([]string(f))
}
