package spec

// Internal model handed to front-end engines. It is a flattened, sorted view
// of an OpenAPI v3 document.

type HttpMethod string

const (
	GET     HttpMethod = "get"
	POST    HttpMethod = "post"
	PUT     HttpMethod = "put"
	DELETE  HttpMethod = "delete"
	PATCH   HttpMethod = "patch"
	HEAD    HttpMethod = "head"
	OPTIONS HttpMethod = "options"
	TRACE   HttpMethod = "trace"
)

var methodOrder = []HttpMethod{GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS, TRACE}

type ServiceModel struct {
	Title       string
	Version     string
	Description string
	BaseURL     string
	Endpoints   []EndpointModel
}

type EndpointModel struct {
	ID          string // method+path
	OperationID string
	MethodName  string // operationId, or derived from method and path
	Method      HttpMethod
	Path        string
	Summary     string
	Tags        []string
	Parameters  []ParameterModel
	HasBody     bool
}

type ParameterModel struct {
	Name     string
	In       string // path|query|header|cookie|formData
	Required bool
}
