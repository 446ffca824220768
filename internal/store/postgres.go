package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"citytwin/internal/model"
)

// Postgres implements Store on a pgx pool. Vehicle routes and simulation
// payloads are stored as jsonb; everything else is flat columns.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool. The caller owns migrations.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, capacity, lat, lng, status, route FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Postgres) GetVehicle(ctx context.Context, id string) (model.Vehicle, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, capacity, lat, lng, status, route FROM vehicles WHERE id = $1`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Vehicle{}, ErrNotFound
	}
	return v, err
}

func (s *Postgres) CreateVehicle(ctx context.Context, v model.Vehicle) error {
	route, err := json.Marshal(v.Route)
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO vehicles (id, name, capacity, lat, lng, status, route)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.Name, v.Capacity, v.CurrentLocation.Lat, v.CurrentLocation.Lng, string(v.Status), route)
	return translateError(err)
}

func (s *Postgres) UpdateVehicle(ctx context.Context, v model.Vehicle) error {
	route, err := json.Marshal(v.Route)
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE vehicles SET name = $2, capacity = $3, lat = $4, lng = $5, status = $6, route = $7
		 WHERE id = $1`,
		v.ID, v.Name, v.Capacity, v.CurrentLocation.Lat, v.CurrentLocation.Lng, string(v.Status), route)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteVehicle(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
}

func (s *Postgres) ListDeliveryPoints(ctx context.Context) ([]model.DeliveryPoint, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, lat, lng, demand, time_window_start, time_window_end
		 FROM delivery_points ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list delivery points: %w", err)
	}
	defer rows.Close()

	var out []model.DeliveryPoint
	for rows.Next() {
		p, err := scanDeliveryPoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) GetDeliveryPoint(ctx context.Context, id string) (model.DeliveryPoint, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, lat, lng, demand, time_window_start, time_window_end
		 FROM delivery_points WHERE id = $1`, id)
	p, err := scanDeliveryPoint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DeliveryPoint{}, ErrNotFound
	}
	return p, err
}

func (s *Postgres) CreateDeliveryPoint(ctx context.Context, p model.DeliveryPoint) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO delivery_points (id, name, lat, lng, demand, time_window_start, time_window_end)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.Location.Lat, p.Location.Lng, p.Demand, p.TimeWindowStart, p.TimeWindowEnd)
	return translateError(err)
}

func (s *Postgres) UpdateDeliveryPoint(ctx context.Context, p model.DeliveryPoint) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE delivery_points SET name = $2, lat = $3, lng = $4, demand = $5,
		 time_window_start = $6, time_window_end = $7 WHERE id = $1`,
		p.ID, p.Name, p.Location.Lat, p.Location.Lng, p.Demand, p.TimeWindowStart, p.TimeWindowEnd)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteDeliveryPoint(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM delivery_points WHERE id = $1`, id)
}

func (s *Postgres) ListScenarios(ctx context.Context) ([]model.Scenario, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, vehicle_ids, delivery_point_ids,
		        start_time, duration_hours, created_at, updated_at
		 FROM scenarios ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var out []model.Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Postgres) GetScenario(ctx context.Context, id string) (model.Scenario, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, description, vehicle_ids, delivery_point_ids,
		        start_time, duration_hours, created_at, updated_at
		 FROM scenarios WHERE id = $1`, id)
	sc, err := scanScenario(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Scenario{}, ErrNotFound
	}
	return sc, err
}

func (s *Postgres) CreateScenario(ctx context.Context, sc model.Scenario) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scenarios (id, name, description, vehicle_ids, delivery_point_ids,
		                        start_time, duration_hours, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sc.ID, sc.Name, sc.Description, sc.VehicleIDs, sc.DeliveryPointIDs,
		sc.StartTime, sc.DurationHours, sc.CreatedAt, sc.UpdatedAt)
	return translateError(err)
}

func (s *Postgres) UpdateScenario(ctx context.Context, sc model.Scenario) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scenarios SET name = $2, description = $3, vehicle_ids = $4,
		        delivery_point_ids = $5, start_time = $6, duration_hours = $7, updated_at = $8
		 WHERE id = $1`,
		sc.ID, sc.Name, sc.Description, sc.VehicleIDs, sc.DeliveryPointIDs,
		sc.StartTime, sc.DurationHours, sc.UpdatedAt)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) DeleteScenario(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
}

func (s *Postgres) SaveSimulation(ctx context.Context, res model.SimulationResponse) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal simulation: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO simulations (id, payload) VALUES ($1, $2)`,
		res.SimulationID, payload)
	return translateError(err)
}

func (s *Postgres) GetSimulation(ctx context.Context, id string) (model.SimulationResponse, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM simulations WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SimulationResponse{}, ErrNotFound
	}
	if err != nil {
		return model.SimulationResponse{}, fmt.Errorf("get simulation: %w", err)
	}
	var res model.SimulationResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return model.SimulationResponse{}, fmt.Errorf("decode simulation: %w", err)
	}
	return res, nil
}

func (s *Postgres) ListSimulations(ctx context.Context) ([]model.SimulationResponse, error) {
	rows, err := s.pool.Query(ctx, `SELECT payload FROM simulations ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list simulations: %w", err)
	}
	defer rows.Close()

	var out []model.SimulationResponse
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var res model.SimulationResponse
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, fmt.Errorf("decode simulation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteSimulation(ctx context.Context, id string) error {
	return s.deleteByID(ctx, `DELETE FROM simulations WHERE id = $1`, id)
}

func (s *Postgres) CreateUser(ctx context.Context, u model.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	return translateError(err)
}

func (s *Postgres) GetUser(ctx context.Context, id string) (model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Postgres) FindUserByLogin(ctx context.Context, login string) (model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE lower(username) = lower($1) OR lower(email) = lower($1)`, login)
	return scanUser(row)
}

func (s *Postgres) Close() {
	s.pool.Close()
}

func (s *Postgres) deleteByID(ctx context.Context, query, id string) error {
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVehicle(row pgx.Row) (model.Vehicle, error) {
	var v model.Vehicle
	var status string
	var route []byte
	if err := row.Scan(&v.ID, &v.Name, &v.Capacity,
		&v.CurrentLocation.Lat, &v.CurrentLocation.Lng, &status, &route); err != nil {
		return model.Vehicle{}, err
	}
	v.Status = model.NormalizeStatus(status)
	if len(route) > 0 {
		if err := json.Unmarshal(route, &v.Route); err != nil {
			return model.Vehicle{}, fmt.Errorf("decode route: %w", err)
		}
	}
	return v, nil
}

func scanDeliveryPoint(row pgx.Row) (model.DeliveryPoint, error) {
	var p model.DeliveryPoint
	if err := row.Scan(&p.ID, &p.Name, &p.Location.Lat, &p.Location.Lng,
		&p.Demand, &p.TimeWindowStart, &p.TimeWindowEnd); err != nil {
		return model.DeliveryPoint{}, err
	}
	return p, nil
}

func scanScenario(row pgx.Row) (model.Scenario, error) {
	var sc model.Scenario
	if err := row.Scan(&sc.ID, &sc.Name, &sc.Description, &sc.VehicleIDs, &sc.DeliveryPointIDs,
		&sc.StartTime, &sc.DurationHours, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
		return model.Scenario{}, err
	}
	return sc, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}
