// Package codegen wraps the client generators: an in-process front-end
// renderer and the out-of-process back-end code generator.
package codegen

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/swagger-cli/internal/spec"
)

// FrontRequest is the input of a front-end engine.
type FrontRequest struct {
	ClassName  string // service factory name, e.g. "PetStore"
	ModuleName string // AngularJS module name, e.g. "petStore"
	Doc        *openapi3.T
	Model      *spec.ServiceModel
}

// FrontEngine renders front-end client source text.
type FrontEngine interface {
	Render(ctx context.Context, req FrontRequest) (string, error)
}

// AngularEngine renders an AngularJS module exposing one $http-backed
// factory with a method per operation.
type AngularEngine struct {
	tmpl *template.Template
}

// NewAngularEngine parses the built-in module template.
func NewAngularEngine() *AngularEngine {
	tmpl := template.Must(template.New("angular").Funcs(sprig.TxtFuncMap()).Parse(angularTemplate))
	return &AngularEngine{tmpl: tmpl}
}

func (e *AngularEngine) Render(ctx context.Context, req FrontRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.ClassName == "" || req.ModuleName == "" {
		return "", fmt.Errorf("codegen: class and module names are required")
	}
	model := req.Model
	if model == nil {
		if req.Doc == nil {
			return "", fmt.Errorf("codegen: no document to render")
		}
		model = spec.BuildServiceModel(req.Doc)
	}
	var buf bytes.Buffer
	data := struct {
		ClassName  string
		ModuleName string
		Model      *spec.ServiceModel
	}{req.ClassName, req.ModuleName, model}
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("codegen: render %s: %w", req.ModuleName, err)
	}
	return buf.String(), nil
}

const angularTemplate = `/*jshint -W069 */
/*global angular:false */
angular.module('{{ .ModuleName | js }}', [])
    .factory('{{ .ClassName | js }}', ['$q', '$http', '$rootScope', function($q, $http, $rootScope) {
        'use strict';

        /**
         * {{ .Model.Description | default .Model.Title | default .ClassName | replace "*/" "* /" | replace "\n" " " }}
         * @class {{ .ClassName }}
         * @param {(string|object)} [domainOrOptions] - The project domain or options object.
         * @param {string} [cache] - An angularjs cache implementation
         */
        var {{ .ClassName }} = (function() {
            function {{ .ClassName }}(options, cache) {
                var domain = (typeof options === 'object') ? options.domain : options;
                this.domain = typeof(domain) === 'string' ? domain : '{{ .Model.BaseURL | js }}';
                if (this.domain.length === 0) {
                    throw new Error('Domain parameter must be specified as a string.');
                }
                cache = cache || ((typeof options === 'object') ? options.cache : cache);
                this.cache = cache;
            }

            {{ .ClassName }}.prototype.$on = function($scope, path, handler) {
                var url = this.domain + path;
                $scope.$on(url, function() {
                    handler();
                });
                return this;
            };

            {{ .ClassName }}.prototype.$broadcast = function(path) {
                var url = this.domain + path;
                $rootScope.$broadcast(url);
                return this;
            };
{{- range .Model.Endpoints }}

            /**
             * {{ .Summary | default .ID | replace "*/" "* /" | replace "\n" " " }}
             * @method
             * @name {{ $.ClassName }}#{{ .MethodName }}
             * @param {object} parameters - method options and parameters
{{- range .Parameters }}
             * @param {{ "{" }}*{{ "}" }} {{ if not .Required }}[{{ end }}parameters.{{ .Name }}{{ if not .Required }}]{{ end }} - {{ .In }} parameter
{{- end }}
{{- if .Tags }}
             * tags: {{ join ", " .Tags }}
{{- end }}
             */
            {{ $.ClassName }}.prototype.{{ .MethodName }} = function(parameters) {
                if (parameters === undefined) {
                    parameters = {};
                }
                var deferred = $q.defer();
                var domain = this.domain;
                var path = '{{ .Path | js }}';
                var body;
                var queryParameters = {};
                var headers = {};
                var form = {};
{{- range .Parameters }}
{{- if .Required }}

                if (parameters['{{ .Name | js }}'] === undefined) {
                    deferred.reject(new Error('Missing required {{ .In }} parameter: {{ .Name | js }}'));
                    return deferred.promise;
                }
{{- end }}
{{- if eq .In "path" }}
                path = path.replace('{{ "{" }}{{ .Name | js }}{{ "}" }}', parameters['{{ .Name | js }}']);
{{- else if eq .In "query" }}
                if (parameters['{{ .Name | js }}'] !== undefined) {
                    queryParameters['{{ .Name | js }}'] = parameters['{{ .Name | js }}'];
                }
{{- else if eq .In "header" }}
                if (parameters['{{ .Name | js }}'] !== undefined) {
                    headers['{{ .Name | js }}'] = parameters['{{ .Name | js }}'];
                }
{{- else if eq .In "formData" }}
                if (parameters['{{ .Name | js }}'] !== undefined) {
                    form['{{ .Name | js }}'] = parameters['{{ .Name | js }}'];
                }
{{- end }}
{{- end }}
{{- if .HasBody }}
                if (parameters['body'] !== undefined) {
                    body = parameters['body'];
                }
{{- end }}

                if (parameters.$queryParameters) {
                    Object.keys(parameters.$queryParameters).forEach(function(parameterName) {
                        queryParameters[parameterName] = parameters.$queryParameters[parameterName];
                    });
                }

                var options = {
                    timeout: parameters.$timeout,
                    method: '{{ .Method | toString | upper }}',
                    url: domain + path,
                    params: queryParameters,
                    data: body,
                    headers: headers
                };
                if (Object.keys(form).length > 0) {
                    options.data = form;
                    options.headers['Content-Type'] = 'application/x-www-form-urlencoded';
                    options.transformRequest = {{ $.ClassName }}.transformRequest;
                }
                $http(options)
                    .then(function(response) {
                        deferred.resolve(response);
                    }, function(response) {
                        deferred.reject(response);
                    });

                return deferred.promise;
            };
{{- end }}

            {{ .ClassName }}.transformRequest = function(obj) {
                var str = [];
                for (var p in obj) {
                    var val = obj[p];
                    if (angular.isArray(val)) {
                        val.forEach(function(v) {
                            str.push(encodeURIComponent(p) + '=' + encodeURIComponent(v));
                        });
                    } else {
                        str.push(encodeURIComponent(p) + '=' + encodeURIComponent(val));
                    }
                }
                return str.join('&');
            };

            return {{ .ClassName }};
        })();

        return {{ .ClassName }};
    }]);
`
