package spec

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/swagger-cli/internal/naming"
)

// BuildServiceModel flattens doc into a ServiceModel with endpoints sorted by
// path and then by method.
func BuildServiceModel(doc *openapi3.T) *ServiceModel {
	sm := &ServiceModel{}
	if doc == nil {
		return sm
	}
	if doc.Info != nil {
		sm.Title = doc.Info.Title
		sm.Version = doc.Info.Version
		sm.Description = doc.Info.Description
	}
	if len(doc.Servers) > 0 && doc.Servers[0] != nil {
		sm.BaseURL = strings.TrimSuffix(doc.Servers[0].URL, "/")
	}

	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		ops := item.Operations()
		for _, m := range methodOrder {
			op := ops[strings.ToUpper(string(m))]
			if op == nil {
				continue
			}
			ep := EndpointModel{
				ID:          string(m) + " " + p,
				OperationID: op.OperationID,
				MethodName:  methodName(op.OperationID, m, p),
				Method:      m,
				Path:        p,
				Summary:     op.Summary,
				Tags:        append([]string(nil), op.Tags...),
				Parameters:  collectParams(item.Parameters, op.Parameters),
				HasBody:     op.RequestBody != nil,
			}
			if form := formParams(op.RequestBody); len(form) > 0 {
				ep.Parameters = append(ep.Parameters, form...)
				ep.HasBody = false
			}
			sm.Endpoints = append(sm.Endpoints, ep)
		}
	}
	return sm
}

// collectParams merges path-level and operation-level parameters; the
// operation wins on a name+location clash.
func collectParams(shared, own openapi3.Parameters) []ParameterModel {
	var out []ParameterModel
	index := map[string]int{}
	add := func(ref *openapi3.ParameterRef) {
		if ref == nil || ref.Value == nil {
			return
		}
		pm := ParameterModel{Name: ref.Value.Name, In: ref.Value.In, Required: ref.Value.Required}
		key := pm.In + ":" + pm.Name
		if i, ok := index[key]; ok {
			out[i] = pm
			return
		}
		index[key] = len(out)
		out = append(out, pm)
	}
	for _, ref := range shared {
		add(ref)
	}
	for _, ref := range own {
		add(ref)
	}
	return out
}

var formContentTypes = []string{"application/x-www-form-urlencoded", "multipart/form-data"}

// formParams turns the properties of a form-encoded request body into
// "formData" parameters, sorted by name. Swagger 2 formData parameters end
// up there after conversion.
func formParams(body *openapi3.RequestBodyRef) []ParameterModel {
	if body == nil || body.Value == nil {
		return nil
	}
	for _, ct := range formContentTypes {
		mt := body.Value.Content.Get(ct)
		if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
			continue
		}
		schema := mt.Schema.Value
		required := map[string]bool{}
		for _, name := range schema.Required {
			required[name] = true
		}
		names := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]ParameterModel, 0, len(names))
		for _, name := range names {
			out = append(out, ParameterModel{Name: name, In: "formData", Required: required[name]})
		}
		return out
	}
	return nil
}

func methodName(operationID string, m HttpMethod, path string) string {
	if id := strings.TrimSpace(operationID); id != "" {
		return naming.Decapitalize(naming.Classify(id))
	}
	var parts []string
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return string(m) + naming.Classify(strings.Join(parts, " "))
}
