package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/antonio-alexander/go-employee-client/internal/data"
)

// fixtures are loaded whenever the store is opened or cleared
var fixtures = []data.Employee{
	{FirstName: "Chris", LastName: "Sanders", Age: 32, Gender: "male", Role: "Lead Engineer"},
	{FirstName: "Adam", LastName: "Sandler", Age: 50, Gender: "male", Role: "Engineer"},
	{FirstName: "Jenny", LastName: "Stevens", Age: 28, Gender: "female", Role: "Software Engineer"},
}

type memoryStore struct {
	sync.RWMutex
	employees map[int64]*data.Employee //map[id]employee
	nextId    int64
}

func newMemoryStore() *memoryStore {
	s := &memoryStore{}
	_ = s.Clear(context.Background())
	return s
}

func (s *memoryStore) Clear(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	s.employees = make(map[int64]*data.Employee)
	s.nextId = 0
	for _, fixture := range fixtures {
		s.nextId++
		employee := fixture
		employee.ID = data.Int64(s.nextId)
		s.employees[s.nextId] = &employee
	}
	return nil
}

func (s *memoryStore) sorted(filter func(*data.Employee) bool) []*data.Employee {
	employees := make([]*data.Employee, 0, len(s.employees))
	for _, employee := range s.employees {
		if filter == nil || filter(employee) {
			employees = append(employees, employee.Copy())
		}
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].EmployeeId() < employees[j].EmployeeId()
	})
	return employees
}

func (s *memoryStore) EmployeesList(ctx context.Context) ([]*data.Employee, error) {
	s.RLock()
	defer s.RUnlock()

	return s.sorted(nil), nil
}

func (s *memoryStore) EmployeeRead(ctx context.Context, id int64) (*data.Employee, error) {
	s.RLock()
	defer s.RUnlock()

	employee, ok := s.employees[id]
	if !ok {
		return nil, data.ErrEmployeeNotFound
	}
	return employee.Copy(), nil
}

func (s *memoryStore) EmployeesByName(ctx context.Context, name string) ([]*data.Employee, error) {
	s.RLock()
	defer s.RUnlock()

	employees := s.sorted(func(e *data.Employee) bool {
		return strings.EqualFold(e.FirstName, name)
	})
	if len(employees) == 0 {
		return nil, data.ErrEmployeeNameNotFound
	}
	return employees, nil
}

func (s *memoryStore) EmployeeCreate(ctx context.Context, employee data.Employee) (*data.Employee, error) {
	s.Lock()
	defer s.Unlock()

	s.nextId++
	employee.ID = data.Int64(s.nextId)
	s.employees[s.nextId] = employee.Copy()
	return employee.Copy(), nil
}

func (s *memoryStore) EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (*data.Employee, error) {
	s.Lock()
	defer s.Unlock()

	existing, ok := s.employees[id]
	if !ok {
		return nil, data.ErrEmployeeNotFound
	}
	if employee.FirstName != "" {
		existing.FirstName = employee.FirstName
	}
	if employee.LastName != "" {
		existing.LastName = employee.LastName
	}
	if employee.Age > 0 {
		existing.Age = employee.Age
	}
	if employee.Gender != "" {
		existing.Gender = employee.Gender
	}
	if employee.Role != "" {
		existing.Role = employee.Role
	}
	return existing.Copy(), nil
}

func (s *memoryStore) EmployeeDelete(ctx context.Context, id int64) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.employees[id]; !ok {
		return data.ErrEmployeeNotFound
	}
	delete(s.employees, id)
	return nil
}
