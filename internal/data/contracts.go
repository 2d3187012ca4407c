package data

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	RouteAllEmployees  string = "/v1/allEmployees"
	RouteEmployee      string = "/v1/employee"
	RouteEmployeeId    string = RouteEmployee + "/{" + PathId + "}"
	RouteEmployeeName  string = "/v1/employeeName"
	RouteEmployeeError string = RouteEmployee + "/error"
)

const PathId string = "id"

const ParameterEmployeeName string = "employee_name"

const (
	MessageEmployeeDeleted string = "Employee deleted successfully."
	MessageNotFound        string = "Employee not found"
	MessageNameNotFound    string = "No Employee found for the passed name"
	MessageSomethingWrong  string = "Something went wrong"
	MessageInvalidId       string = "Invalid employee id"
)

// Endpoint describes a single remote operation, the path may contain
// placeholders in the form {name}
type Endpoint struct {
	Method string
	Path   string
}

var (
	EndpointEmployeesList  = Endpoint{Method: http.MethodGet, Path: RouteAllEmployees}
	EndpointEmployeeRead   = Endpoint{Method: http.MethodGet, Path: RouteEmployeeId}
	EndpointEmployeeByName = Endpoint{Method: http.MethodGet, Path: RouteEmployeeName}
	EndpointEmployeeCreate = Endpoint{Method: http.MethodPost, Path: RouteEmployee}
	EndpointEmployeeUpdate = Endpoint{Method: http.MethodPut, Path: RouteEmployeeId}
	EndpointEmployeeDelete = Endpoint{Method: http.MethodDelete, Path: RouteEmployeeId}
	EndpointEmployeeError  = Endpoint{Method: http.MethodGet, Path: RouteEmployeeError}
)

// Expand substitutes each placeholder with its path escaped value; it
// fails if a placeholder has no value
func (e Endpoint) Expand(params map[string]string) (string, error) {
	var builder strings.Builder

	path := e.Path
	for {
		start := strings.Index(path, "{")
		if start < 0 {
			builder.WriteString(path)
			return builder.String(), nil
		}
		end := strings.Index(path[start:], "}")
		if end < 0 {
			return "", errors.Errorf("unterminated placeholder in path: %s", e.Path)
		}
		name := path[start+1 : start+end]
		value, ok := params[name]
		if !ok {
			return "", errors.Errorf("no value for placeholder %q in path: %s", name, e.Path)
		}
		builder.WriteString(path[:start])
		builder.WriteString(url.PathEscape(value))
		path = path[start+end+1:]
	}
}
