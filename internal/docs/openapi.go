// Package docs builds the OpenAPI document for the users API and serves the docs UI.
package docs

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog/log"
)

const (
	Title   = "Typed API"
	Version = "0.1.0"

	// DocumentPath is where the generated document is served.
	DocumentPath = "/docs/openapi.json"

	usersTag = "users"
)

func schemaRef(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func components() openapi3.Schemas {
	user := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewUUIDSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("telephone", openapi3.NewStringSchema()).
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email"))
	user.Required = []string{"id", "name", "telephone", "email"}

	create := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("telephone", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email")).
		WithProperty("password", openapi3.NewStringSchema().WithMinLength(1))
	create.Required = []string{"name", "telephone", "email", "password"}
	create.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(false)}

	update := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("telephone", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(9)).
		WithProperty("email", openapi3.NewStringSchema().WithFormat("email")).
		WithProperty("password", openapi3.NewStringSchema())
	update.Required = []string{"name", "telephone", "email"}
	update.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(false)}

	errorSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("details", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
	errorSchema.Required = []string{"error"}

	return openapi3.Schemas{
		"User":              openapi3.NewSchemaRef("", user),
		"CreateUserRequest": openapi3.NewSchemaRef("", create),
		"UpdateUserRequest": openapi3.NewSchemaRef("", update),
		"Error":             openapi3.NewSchemaRef("", errorSchema),
	}
}

func jsonResponse(description, schema string) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(schemaRef(schema)),
	}
}

func errorResponse(description string) *openapi3.ResponseRef {
	return jsonResponse(description, "Error")
}

func jsonBody(schema string) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schemaRef(schema)),
	}
}

func idParam() *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: openapi3.NewPathParameter("id").
			WithDescription("User id").
			WithSchema(openapi3.NewUUIDSchema()),
	}
}

func filterParam(name string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: openapi3.NewQueryParameter(name).
			WithDescription("Case-insensitive substring match on " + name).
			WithSchema(openapi3.NewStringSchema().WithMaxLength(255)),
	}
}

type status struct {
	code int
	ref  *openapi3.ResponseRef
}

func operation(id, summary string, params openapi3.Parameters, body *openapi3.RequestBodyRef, statuses ...status) *openapi3.Operation {
	responses := &openapi3.Responses{}
	for _, s := range statuses {
		responses.Set(strconv.Itoa(s.code), s.ref)
	}

	return &openapi3.Operation{
		Tags:        []string{usersTag},
		OperationID: id,
		Summary:     summary,
		Parameters:  params,
		RequestBody: body,
		Responses:   responses,
	}
}

// NewDocument describes every /users route.
func NewDocument() *openapi3.T {
	users := openapi3.NewArraySchema()
	users.Items = schemaRef("User")
	userList := &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Matching users").WithJSONSchema(users),
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   Title,
			Version: Version,
		},
		Tags: openapi3.Tags{
			{Name: usersTag, Description: "User management"},
		},
		Components: &openapi3.Components{Schemas: components()},
		Paths:      openapi3.NewPaths(),
	}

	doc.Paths.Set("/users", &openapi3.PathItem{
		Get: operation("listUsers", "List users",
			openapi3.Parameters{filterParam("name"), filterParam("email"), filterParam("telephone")},
			nil,
			status{http.StatusOK, userList},
			status{http.StatusBadRequest, errorResponse("Invalid filter")},
			status{http.StatusInternalServerError, errorResponse("Failed to list users")},
		),
		Post: operation("createUser", "Create a user", nil, jsonBody("CreateUserRequest"),
			status{http.StatusCreated, jsonResponse("Created user", "User")},
			status{http.StatusBadRequest, errorResponse("Invalid payload")},
			status{http.StatusConflict, errorResponse("Email already exists")},
			status{http.StatusInternalServerError, errorResponse("Failed to create user")},
		),
	})

	doc.Paths.Set("/users/{id}", &openapi3.PathItem{
		Get: operation("getUser", "Get a user by id", openapi3.Parameters{idParam()}, nil,
			status{http.StatusOK, jsonResponse("The user", "User")},
			status{http.StatusBadRequest, errorResponse("Invalid id parameter")},
			status{http.StatusNotFound, errorResponse("User not found")},
			status{http.StatusInternalServerError, errorResponse("Failed to get user")},
		),
		Put: operation("updateUser", "Update a user", openapi3.Parameters{idParam()}, jsonBody("UpdateUserRequest"),
			status{http.StatusOK, jsonResponse("Updated user", "User")},
			status{http.StatusBadRequest, errorResponse("Invalid id or payload")},
			status{http.StatusNotFound, errorResponse("User not found")},
			status{http.StatusConflict, errorResponse("Email already exists")},
			status{http.StatusInternalServerError, errorResponse("Failed to update user")},
		),
		Delete: operation("deleteUser", "Delete a user", openapi3.Parameters{idParam()}, nil,
			status{http.StatusNoContent, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Deleted")}},
			status{http.StatusBadRequest, errorResponse("Invalid id parameter")},
			status{http.StatusNotFound, errorResponse("User not found")},
			status{http.StatusInternalServerError, errorResponse("Failed to delete user")},
		),
	})

	return doc
}

// DocumentHandler serves doc as JSON. The document is marshalled once.
func DocumentHandler(doc *openapi3.T) (http.HandlerFunc, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(body); err != nil {
			log.Error().Err(err).Msg("Failed to write OpenAPI document")
		}
	}, nil
}
