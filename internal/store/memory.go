package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"citytwin/internal/model"
)

// Memory is a mutex-guarded in-memory store used when DB_URL is empty and in
// tests. Values are copied on the way in and out so callers never share
// mutable state with the store.
type Memory struct {
	mu          sync.RWMutex
	vehicles    map[string]model.Vehicle
	points      map[string]model.DeliveryPoint
	scenarios   map[string]model.Scenario
	simulations map[string]model.SimulationResponse
	users       map[string]model.User
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		vehicles:    map[string]model.Vehicle{},
		points:      map[string]model.DeliveryPoint{},
		scenarios:   map[string]model.Scenario{},
		simulations: map[string]model.SimulationResponse{},
		users:       map[string]model.User{},
	}
}

func (m *Memory) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		out = append(out, v.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetVehicle(ctx context.Context, id string) (model.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vehicles[id]
	if !ok {
		return model.Vehicle{}, ErrNotFound
	}
	return v.Clone(), nil
}

func (m *Memory) CreateVehicle(ctx context.Context, v model.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[v.ID]; ok {
		return ErrConflict
	}
	m.vehicles[v.ID] = v.Clone()
	return nil
}

func (m *Memory) UpdateVehicle(ctx context.Context, v model.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[v.ID]; !ok {
		return ErrNotFound
	}
	m.vehicles[v.ID] = v.Clone()
	return nil
}

func (m *Memory) DeleteVehicle(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.vehicles[id]; !ok {
		return ErrNotFound
	}
	delete(m.vehicles, id)
	return nil
}

func (m *Memory) ListDeliveryPoints(ctx context.Context) ([]model.DeliveryPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.DeliveryPoint, 0, len(m.points))
	for _, p := range m.points {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetDeliveryPoint(ctx context.Context, id string) (model.DeliveryPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.points[id]
	if !ok {
		return model.DeliveryPoint{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) CreateDeliveryPoint(ctx context.Context, p model.DeliveryPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.points[p.ID]; ok {
		return ErrConflict
	}
	m.points[p.ID] = p
	return nil
}

func (m *Memory) UpdateDeliveryPoint(ctx context.Context, p model.DeliveryPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.points[p.ID]; !ok {
		return ErrNotFound
	}
	m.points[p.ID] = p
	return nil
}

func (m *Memory) DeleteDeliveryPoint(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.points[id]; !ok {
		return ErrNotFound
	}
	delete(m.points, id)
	return nil
}

func (m *Memory) ListScenarios(ctx context.Context) ([]model.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Scenario, 0, len(m.scenarios))
	for _, sc := range m.scenarios {
		out = append(out, cloneScenario(sc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) GetScenario(ctx context.Context, id string) (model.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sc, ok := m.scenarios[id]
	if !ok {
		return model.Scenario{}, ErrNotFound
	}
	return cloneScenario(sc), nil
}

func (m *Memory) CreateScenario(ctx context.Context, sc model.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenarios[sc.ID]; ok {
		return ErrConflict
	}
	m.scenarios[sc.ID] = cloneScenario(sc)
	return nil
}

func (m *Memory) UpdateScenario(ctx context.Context, sc model.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenarios[sc.ID]; !ok {
		return ErrNotFound
	}
	m.scenarios[sc.ID] = cloneScenario(sc)
	return nil
}

func (m *Memory) DeleteScenario(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenarios[id]; !ok {
		return ErrNotFound
	}
	delete(m.scenarios, id)
	return nil
}

func (m *Memory) SaveSimulation(ctx context.Context, res model.SimulationResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.simulations[res.SimulationID]; ok {
		return ErrConflict
	}
	m.simulations[res.SimulationID] = res
	return nil
}

func (m *Memory) GetSimulation(ctx context.Context, id string) (model.SimulationResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.simulations[id]
	if !ok {
		return model.SimulationResponse{}, ErrNotFound
	}
	return res, nil
}

func (m *Memory) ListSimulations(ctx context.Context) ([]model.SimulationResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.SimulationResponse, 0, len(m.simulations))
	for _, res := range m.simulations {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SimulationID < out[j].SimulationID })
	return out, nil
}

func (m *Memory) DeleteSimulation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.simulations[id]; !ok {
		return ErrNotFound
	}
	delete(m.simulations, id)
	return nil
}

func (m *Memory) CreateUser(ctx context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) FindUserByLogin(ctx context.Context, login string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *Memory) Close() {}

func cloneScenario(sc model.Scenario) model.Scenario {
	out := sc
	out.VehicleIDs = append([]string(nil), sc.VehicleIDs...)
	out.DeliveryPointIDs = append([]string(nil), sc.DeliveryPointIDs...)
	return out
}
