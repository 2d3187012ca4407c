package data

import "encoding/json"

type Employee struct {
	ID        *int64 `json:"id,omitempty"` //assigned by the service, absent on create
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Age       int    `json:"age" validate:"required,gt=0"`
	Gender    string `json:"gender" validate:"required"`
	Role      string `json:"role" validate:"required"`
}

func (e *Employee) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Employee) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// EmployeeId returns the id of the employee or zero if it hasn't
// been assigned
func (e *Employee) EmployeeId() int64 {
	if e == nil || e.ID == nil {
		return 0
	}
	return *e.ID
}

func copyId(id *int64) *int64 {
	if id == nil {
		return nil
	}
	i := *id
	return &i
}

// Copy performs a deep copy so the id pointer isn't shared
func (e *Employee) Copy() *Employee {
	employee := &Employee{}
	*employee = *e
	employee.ID = copyId(e.ID)
	return employee
}

func Int64(i int64) *int64 {
	return &i
}
