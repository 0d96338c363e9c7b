// Package graphql exposes a read-only GraphQL view of the request desk:
//
//	{
//	  catalog { departments items }
//	  requests(status: "Pending") { id name email status items }
//	  request(id: 2) { id text structured }
//	  recipients
//	}
//
// Resolvers act as the identity on the request context, so the same
// admin-only rules as the REST endpoints apply.
package graphql

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/supplydesk/app/catalog"
	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/collection"
)

// Source is the read side of the request service.
type Source interface {
	List(ctx context.Context, caller auth.Identity) ([]models.Request, error)
	Get(ctx context.Context, caller auth.Identity, id uint) (models.Request, error)
	Recipients(ctx context.Context, caller auth.Identity) ([]string, error)
}

var catalogType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Catalog",
	Fields: graphql.Fields{
		"departments": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
			Resolve: func(graphql.ResolveParams) (interface{}, error) {
				return catalog.Departments(), nil
			},
		},
		"items": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
			Resolve: func(graphql.ResolveParams) (interface{}, error) {
				return catalog.Items(), nil
			},
		},
	},
})

func requestField(fn func(models.Request) interface{}, t graphql.Output) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(t),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return fn(p.Source.(models.Request)), nil
		},
	}
}

var requestType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Request",
	Fields: graphql.Fields{
		"id":    requestField(func(r models.Request) interface{} { return int(r.ID) }, graphql.Int),
		"name":  requestField(func(r models.Request) interface{} { return r.Name }, graphql.String),
		"email": requestField(func(r models.Request) interface{} { return r.Email }, graphql.String),
		"status": requestField(func(r models.Request) interface{} {
			return string(r.Status)
		}, graphql.String),
		"text": requestField(func(r models.Request) interface{} {
			return r.Description.Text()
		}, graphql.String),
		"structured": requestField(func(r models.Request) interface{} {
			return r.Description.IsStructured()
		}, graphql.Boolean),
		"items": requestField(func(r models.Request) interface{} {
			if items := r.Description.Items(); items != nil {
				return items
			}
			return []string{}
		}, graphql.NewList(graphql.NewNonNull(graphql.String))),
		"createdAt": requestField(func(r models.Request) interface{} {
			return r.CreatedAt.UTC().Format(time.RFC3339)
		}, graphql.String),
	},
})

// NewSchema builds the query schema over src.
func NewSchema(src Source) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"catalog": &graphql.Field{
				Type: graphql.NewNonNull(catalogType),
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return struct{}{}, nil
				},
			},
			"requests": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(requestType))),
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					reqs, err := src.List(p.Context, caller(p.Context))
					if err != nil {
						return nil, err
					}
					raw, ok := p.Args["status"].(string)
					if !ok {
						return reqs, nil
					}
					want, err := models.ParseStatus(raw)
					if err != nil {
						return nil, err
					}
					return collection.Filter(reqs, func(r models.Request) bool { return r.Status == want }), nil
				},
			},
			"request": &graphql.Field{
				Type: requestType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, &models.InvalidFieldError{Field: "id", Value: id, Reason: "must be a positive integer"}
					}
					req, err := src.Get(p.Context, caller(p.Context), uint(id))
					if err != nil {
						return nil, err
					}
					return req, nil
				},
			},
			"recipients": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return src.Recipients(p.Context, caller(p.Context))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

// MustSchema is NewSchema for the static schema built at startup.
func MustSchema(src Source) graphql.Schema {
	s, err := NewSchema(src)
	if err != nil {
		panic("graphql: " + err.Error())
	}
	return s
}

func caller(ctx context.Context) auth.Identity {
	id, _ := auth.IdentityFrom(ctx)
	return id
}
